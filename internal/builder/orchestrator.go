package builder

import (
	"context"

	"vmselector/internal/domain"

	"github.com/hashicorp/go-hclog"
)

// Orchestrator drives the build stage of the pipeline. It hands a frozen
// configuration to the backend, waits for the result, and passes the
// confirmed artifact name onward. Builds are expensive and not assumed
// idempotent, so a failed build is terminal for the invocation.
type Orchestrator struct {
	Backend Backend
	Logger  hclog.Logger
}

// Run performs one build. On failure the returned error is (or wraps) a
// *domain.BuildError and no artifact name is reported.
func (o *Orchestrator) Run(ctx context.Context, cfg domain.Configuration) (string, error) {
	logger := o.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	logger.Info("building VM", "name", cfg.Name, "ram_gb", cfg.RAMGB, "cpu_cores", cfg.CPUCores, "storage_gb", cfg.StorageGB, "overlay", cfg.Overlay)

	artifact, err := o.Backend.Build(ctx, cfg)
	if err != nil {
		return "", err
	}

	logger.Info("build complete", "artifact", artifact)
	return artifact, nil
}
