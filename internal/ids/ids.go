// Package ids generates sortable identifiers for sessions and stored objects.
package ids

import "github.com/segmentio/ksuid"

func New() string {
	return ksuid.New().String()
}
