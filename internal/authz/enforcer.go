// Package authz decides which roles may call which API routes.
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Enforcer checks role based access to request paths.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds an Enforcer from the embedded model and policy.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}
	return &Enforcer{enforcer: enforcer}, nil
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		var err error
		switch {
		case parts[0] == "p" && len(parts) == 4:
			_, err = enforcer.AddPolicy(parts[1], parts[2], parts[3])
		case parts[0] == "g" && len(parts) == 3:
			_, err = enforcer.AddGroupingPolicy(parts[1], parts[2])
		default:
			err = fmt.Errorf("malformed rule")
		}
		if err != nil {
			return fmt.Errorf("failed to load policy line %q: %w", line, err)
		}
	}
	return nil
}

// Allowed reports whether role may perform method on path.
func (e *Enforcer) Allowed(role, path, method string) (bool, error) {
	allowed, err := e.enforcer.Enforce(role, path, method)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return allowed, nil
}
