package client

import "testing"

func guardClient(state State, user User, loading bool) *Client {
	c := New("http://localhost", &memStore{})
	c.mu.Lock()
	c.state = state
	c.sess.User = user
	c.loading = loading
	c.mu.Unlock()
	return c
}

func TestResolve_WaitsWhileLoading(t *testing.T) {
	t.Parallel()

	c := guardClient(StateAuthenticated, User{ID: 1, IsAdmin: true}, true)

	result := c.Resolve(Route{Path: "/admin", RequireAuth: true, RequireAdmin: true})
	if result.Decision != DecisionWait {
		t.Fatalf("decision %v, want wait while session resolves", result.Decision)
	}
}

func TestResolve_PublicRoute(t *testing.T) {
	t.Parallel()

	c := guardClient(StateUnauthenticated, User{}, false)

	result := c.Resolve(Route{Path: "/blog"})
	if result.Decision != DecisionAllow {
		t.Fatalf("decision %v, want allow for public route", result.Decision)
	}
}

func TestResolve_AuthRouteRedirectsToLogin(t *testing.T) {
	t.Parallel()

	c := guardClient(StateUnauthenticated, User{}, false)

	result := c.Resolve(Route{Path: "/profile", RequireAuth: true})
	if result.Decision != DecisionRedirectLogin {
		t.Fatalf("decision %v, want redirect to login", result.Decision)
	}
	if result.From != "/profile" {
		t.Fatalf("From %q, want the originally requested path", result.From)
	}
}

func TestResolve_AdminRouteForVisitor(t *testing.T) {
	t.Parallel()

	c := guardClient(StateUnauthenticated, User{}, false)

	result := c.Resolve(Route{Path: "/admin", RequireAdmin: true})
	if result.Decision != DecisionRedirectLogin {
		t.Fatalf("decision %v, want redirect to login", result.Decision)
	}
	if result.From != "/admin" {
		t.Fatalf("From %q, want /admin", result.From)
	}
}

func TestResolve_AdminRouteForNonAdmin(t *testing.T) {
	t.Parallel()

	c := guardClient(StateAuthenticated, User{ID: 2, Username: "alice"}, false)

	result := c.Resolve(Route{Path: "/admin", RequireAuth: true, RequireAdmin: true})
	if result.Decision != DecisionRedirectHome {
		t.Fatalf("decision %v, want redirect home for non-admin", result.Decision)
	}
}

func TestResolve_AdminRouteForAdmin(t *testing.T) {
	t.Parallel()

	c := guardClient(StateAuthenticated, User{ID: 1, Username: "bob", IsAdmin: true}, false)

	result := c.Resolve(Route{Path: "/admin", RequireAuth: true, RequireAdmin: true})
	if result.Decision != DecisionAllow {
		t.Fatalf("decision %v, want allow for admin", result.Decision)
	}
}

func TestResolve_RefreshingCountsAsAuthenticated(t *testing.T) {
	t.Parallel()

	// Mid-refresh navigation keeps the current principal; the guard must
	// not bounce the user to login while the exchange is in flight.
	c := guardClient(StateRefreshing, User{ID: 1, IsAdmin: true}, false)

	result := c.Resolve(Route{Path: "/admin", RequireAuth: true, RequireAdmin: true})
	if result.Decision != DecisionAllow {
		t.Fatalf("decision %v, want allow while refreshing", result.Decision)
	}
}
