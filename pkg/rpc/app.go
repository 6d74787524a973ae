// Package rpc routes batches of JSON calls to typed handler functions and
// describes those handlers as a schema document.
//
// A router tree is compiled once by NewApp into a flat, id-indexed table.
// Process executes a batch concurrently and returns responses in request
// order; Schema walks the same tree to describe every procedure and the
// types it references.
package rpc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/morezero/typed-rpc/pkg/inject"
)

const appLogPrefix = "rpc:app"

// App holds the compiled procedure table together with the router tree it
// was built from.
type App struct {
	info     AppInfo
	routers  []*Router
	registry *Registry
	provider inject.Provider

	// schemaMu serializes schema passes.
	schemaMu sync.Mutex
}

// Option configures an App.
type Option func(*App)

// WithProvider sets the dependency provider used by Provide extractors.
func WithProvider(p inject.Provider) Option {
	return func(a *App) {
		a.provider = p
	}
}

// NewApp validates the router tree and compiles its procedure table.
func NewApp(info AppInfo, routers []*Router, opts ...Option) (*App, error) {
	if info.Name == "" {
		return nil, fmt.Errorf("%s - app name is required", appLogPrefix)
	}
	if _, err := semver.NewVersion(info.Version); err != nil {
		return nil, fmt.Errorf("%s - app version %q is not a semantic version: %w", appLogPrefix, info.Version, err)
	}

	var errs []error
	for _, r := range routers {
		if r == nil {
			errs = append(errs, fmt.Errorf("%s - nil router", appLogPrefix))
			continue
		}
		if err := r.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	registry, err := BuildRegistry(routers)
	if err != nil {
		return nil, err
	}

	a := &App{
		info:     info,
		routers:  append([]*Router(nil), routers...),
		registry: registry,
		provider: inject.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Info returns the app metadata.
func (a *App) Info() AppInfo {
	return a.info
}

// Registry returns the compiled procedure table.
func (a *App) Registry() *Registry {
	return a.registry
}
