package cron

import (
	"context"
	"log/slog"

	"github.com/flemzord/transbridge/internal/core"
)

func init() {
	core.RegisterModule(&Module{})
}

// SchedulerService is the registry name of the shared scheduler. Other
// modules resolve it during Provision to register their jobs; the scheduler
// itself starts after all registrations, in lifecycle Start order.
const SchedulerService = "cron.scheduler"

// Compile-time interface guards.
var (
	_ core.Provisioner = (*Module)(nil)
	_ core.Starter     = (*Module)(nil)
	_ core.Stopper     = (*Module)(nil)
)

// Module exposes the Scheduler through the module system.
type Module struct {
	scheduler *Scheduler
	logger    *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "cron.scheduler",
		New: func() core.Module { return &Module{} },
	}
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger
	m.scheduler = NewScheduler(m.logger)
	ctx.RegisterService(SchedulerService, m.scheduler)
	return nil
}

// Start implements core.Starter.
func (m *Module) Start() error {
	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	return m.scheduler.Stop(ctx)
}
