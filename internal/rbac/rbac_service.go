package rbac

import (
	"fmt"

	"github.com/Philgatex/huashang-hais-app/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

type EnforceRequest = domain.EnforceRequest

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req EnforceRequest) (bool, error)
	Permissions(role string) ([]string, error)
}

type service struct {
	enforcer *casbin.SyncedEnforcer
	logger   *zap.Logger
}

// NewService loads perms and roles into the enforcer and serves checks from it.
func NewService(enforcer *casbin.SyncedEnforcer, perms []Permission, roles []Inheritance, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}

	enforcer.ClearPolicy()
	for _, p := range perms {
		if _, err := enforcer.AddPolicy(p.Role, p.Resource, p.Action); err != nil {
			return nil, fmt.Errorf("add policy %s %s %s: %w", p.Role, p.Resource, p.Action, err)
		}
	}
	for _, r := range roles {
		if _, err := enforcer.AddGroupingPolicy(r.Role, r.Parent); err != nil {
			return nil, fmt.Errorf("add role %s -> %s: %w", r.Role, r.Parent, err)
		}
	}

	l.Info("rbac policy loaded", zap.Int("permissions", len(perms)), zap.Int("inheritances", len(roles)))

	return &service{enforcer: enforcer, logger: l}, nil
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	if req.Role == "" {
		return false, nil
	}

	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)

	return allowed, nil
}

// Permissions lists "resource:action" pairs granted to role, inherited ones included.
func (s *service) Permissions(role string) ([]string, error) {
	perms, err := s.enforcer.GetImplicitPermissionsForUser(role)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(perms))
	for _, p := range perms {
		if len(p) < 3 {
			continue
		}
		out = append(out, p[1]+":"+p[2])
	}
	return out, nil
}
