package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gnfinvest/gnf/internal/api"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/repository"
)

// AuthBackend is the subset of the REST client used for logins.
type AuthBackend interface {
	Login(ctx context.Context, req domain.LoginRequest) (domain.Credential, error)
	AdminLogin(ctx context.Context, req domain.LoginRequest) (domain.Credential, error)
	Signup(ctx context.Context, req domain.SignupRequest) (domain.Credential, error)
	Me(ctx context.Context, cred domain.Credential) (domain.User, error)
}

type accountService struct {
	backend  AuthBackend
	creds    repository.CredentialRepo
	now      func() time.Time
	observer UseCaseObserver
}

func NewAccountService(backend AuthBackend, creds repository.CredentialRepo, observers ...UseCaseObserver) AccountService {
	return &accountService{
		backend:  backend,
		creds:    creds,
		now:      time.Now,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *accountService) Login(ctx context.Context, req domain.LoginRequest) (repository.StoredCredential, error) {
	return s.exchange(ctx, "login", req.EmailOrUsername, func() (domain.Credential, error) {
		if err := req.Validate(); err != nil {
			return domain.Credential{}, err
		}
		return s.backend.Login(ctx, req)
	})
}

func (s *accountService) AdminLogin(ctx context.Context, req domain.LoginRequest) (repository.StoredCredential, error) {
	return s.exchange(ctx, "admin-login", req.EmailOrUsername, func() (domain.Credential, error) {
		if err := req.Validate(); err != nil {
			return domain.Credential{}, err
		}
		return s.backend.AdminLogin(ctx, req)
	})
}

func (s *accountService) Signup(ctx context.Context, req domain.SignupRequest) (repository.StoredCredential, error) {
	return s.exchange(ctx, "signup", req.Username, func() (domain.Credential, error) {
		if err := req.Validate(); err != nil {
			return domain.Credential{}, err
		}
		return s.backend.Signup(ctx, req)
	})
}

func (s *accountService) exchange(ctx context.Context, name, username string, fn func() (domain.Credential, error)) (stored repository.StoredCredential, err error) {
	startedAt := s.now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  s.now().Sub(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"username": username},
		})
	}()

	cred, err := fn()
	if err != nil {
		return repository.StoredCredential{}, err
	}
	stored = repository.StoredCredential{Credential: cred, Username: username, SavedAt: s.now()}
	if err := s.creds.Save(ctx, stored); err != nil {
		return repository.StoredCredential{}, fmt.Errorf("saving credential: %w", err)
	}
	return stored, nil
}

func (s *accountService) Logout(ctx context.Context, role domain.Role) error {
	return s.creds.Delete(ctx, role)
}

func (s *accountService) Credential(ctx context.Context, role domain.Role) (domain.Credential, error) {
	stored, err := s.creds.Get(ctx, role)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Credential{}, fmt.Errorf("not logged in as %s: %w", role, domain.ErrAuth)
	}
	if err != nil {
		return domain.Credential{}, err
	}
	if err := api.CheckCredential(stored.Credential, role == domain.RoleAdmin, s.now()); err != nil {
		return stored.Credential, err
	}
	return stored.Credential, nil
}

func (s *accountService) Whoami(ctx context.Context) (domain.User, error) {
	cred, err := s.Credential(ctx, domain.RoleInvestor)
	if err != nil {
		return domain.User{}, err
	}
	return s.backend.Me(ctx, cred)
}
