package api

import (
	"github.com/caesb-automation/baixa/internal/closure"
	"github.com/caesb-automation/baixa/internal/config"
	"github.com/caesb-automation/baixa/internal/listing"
	"github.com/caesb-automation/baixa/internal/runner"
	"github.com/caesb-automation/baixa/internal/session"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Sessions session.System
	Listing  listing.System
	Closure  closure.System
	Runner   *runner.Controller
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	sessions := session.New(
		runtime.Browser,
		session.Config{
			LoginURL:          cfg.Portal.LoginURL(),
			ControlURL:        cfg.Portal.ControlURL(),
			Username:          cfg.Portal.Username,
			Password:          cfg.Portal.Password,
			NavigationTimeout: cfg.Runner.NavigationTimeoutDuration(),
		},
		runtime.Logger,
	)

	lister := listing.NewClient(
		listing.Config{
			ControlURL:  cfg.Portal.ControlURL(),
			RowsPerPage: cfg.Portal.RowsPerPage,
			Timeout:     cfg.Runner.NavigationTimeoutDuration(),
		},
		runtime.Logger,
	)

	closer := closure.New(
		runtime.Browser,
		closure.Config{
			ClosureURL:        cfg.Portal.ClosureURL(),
			ControlURL:        cfg.Portal.ControlURL(),
			LoginPath:         cfg.Portal.LoginPath,
			NavigationTimeout: cfg.Runner.NavigationTimeoutDuration(),
			SelectorTimeout:   cfg.Runner.SelectorTimeoutDuration(),
			ActionTimeout:     cfg.Runner.ActionTimeoutDuration(),
			SearchRetries:     cfg.Runner.SearchRetries,
			SearchRetryDelay:  cfg.Runner.SearchRetryDelayDuration(),
			Location:          cfg.Portal.Location(),
			Fields:            closure.DefaultFormFields(),
		},
		runtime.Logger,
	)

	controller := runner.New(
		sessions,
		lister,
		closer,
		runtime.Notifier,
		runner.Config{EmptyPollInterval: cfg.Runner.EmptyPollIntervalDuration()},
		runtime.Logger,
	)

	return &Domain{
		Sessions: sessions,
		Listing:  lister,
		Closure:  closer,
		Runner:   controller,
	}
}
