package client

// Route describes the access requirements of one front-end view.
type Route struct {
	Path         string
	RequireAuth  bool
	RequireAdmin bool
}

type Decision int

const (
	// DecisionWait: session state is still resolving; render a neutral
	// waiting view, never the protected content and never a redirect.
	DecisionWait Decision = iota
	DecisionAllow
	DecisionRedirectLogin
	DecisionRedirectHome
)

type GuardResult struct {
	Decision Decision
	// From carries the originally requested location so login can return
	// the visitor there afterwards.
	From string
}

// Resolve decides what the presentation layer should do with a navigation.
// It delegates every role judgment to the session state the server
// resolved; nothing here re-implements the admin check.
func (c *Client) Resolve(route Route) GuardResult {
	if c.Loading() {
		return GuardResult{Decision: DecisionWait}
	}

	if !route.RequireAuth && !route.RequireAdmin {
		return GuardResult{Decision: DecisionAllow}
	}

	user, authenticated := c.CurrentUser()
	if !authenticated {
		return GuardResult{Decision: DecisionRedirectLogin, From: route.Path}
	}

	if route.RequireAdmin && !user.IsAdmin {
		return GuardResult{Decision: DecisionRedirectHome}
	}

	return GuardResult{Decision: DecisionAllow}
}
