package courier

import (
	"github.com/kode4food/courier/topic"
	"github.com/kode4food/courier/topic/config"

	internal "github.com/kode4food/courier/internal/topic"
)

// NewRegistry instantiates a new Registry. Every Writer and Reader is opened
// through a Registry, and Topics are only visible within the Registry that
// created them
func NewRegistry(o ...config.Option) (topic.Registry, error) {
	r, err := internal.Make(o...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// NewWaitSet instantiates a new WaitSet with no attached Conditions
func NewWaitSet() topic.WaitSet {
	return internal.MakeWaitSet()
}
