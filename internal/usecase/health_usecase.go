package usecase

import "context"

// HealthCheck probes one dependency. A nil check marks the dependency as disabled.
type HealthCheck func(ctx context.Context) error

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	checks map[string]HealthCheck
}

func NewHealthUsecase(checks map[string]HealthCheck) HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	result := map[string]string{
		"status": "ok",
	}
	for name, check := range u.checks {
		switch {
		case check == nil:
			result[name] = "disabled"
		case check(ctx) != nil:
			result[name] = "unavailable"
			result["status"] = "degraded"
		default:
			result[name] = "ok"
		}
	}
	return result
}
