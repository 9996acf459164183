package injectable

import (
	"context"
	"fmt"

	"github.com/bravo68web/scribe/internal/application/service"
	"github.com/bravo68web/scribe/internal/config"
	"github.com/bravo68web/scribe/internal/infrastructure/database"
	"github.com/bravo68web/scribe/internal/infrastructure/git"
	"github.com/bravo68web/scribe/internal/infrastructure/github"
	"github.com/bravo68web/scribe/internal/infrastructure/repository"
)

// Dependencies holds all the dependencies required by the router
type Dependencies struct {
	AuthService        *service.AuthService
	PermissionService  *service.PermissionService
	RepoService        *service.RepoService
	PullRequestService *service.PullRequestService
	UserService        *service.UserService
	GroupService       *service.GroupService
}

// LoadDependencies wires repositories, infrastructure and services.
// The git clone and the app key are touched here, so failure is a
// startup failure.
func LoadDependencies(ctx context.Context, cfg *config.Config, db *database.Database) (*Dependencies, error) {
	userRepo := repository.NewUserRepository(db.DB())
	groupRepo := repository.NewGroupRepository(db.DB())
	pullRepo := repository.NewPullRecordRepository(db.DB())

	appTokens, err := github.NewAppTokens(&cfg.GitHub)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app credentials: %w", err)
	}

	ghClient, err := github.NewClient(&cfg.GitHub, &cfg.Files, appTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize github client: %w", err)
	}

	manager, err := git.NewManager(ctx, &cfg.Files, &cfg.GitHub, appTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository clone: %w", err)
	}

	permissionService := service.NewPermissionService(groupRepo)
	authService := service.NewAuthService(&cfg.OAuth, &cfg.Admin, userRepo, groupRepo)
	repoService := service.NewRepoService(manager, permissionService)
	pullService := service.NewPullRequestService(ghClient, pullRepo, permissionService, cfg.GitHub.DefaultBranch)
	userService := service.NewUserService(userRepo, groupRepo, permissionService)
	groupService := service.NewGroupService(groupRepo)

	return &Dependencies{
		AuthService:        authService,
		PermissionService:  permissionService,
		RepoService:        repoService,
		PullRequestService: pullService,
		UserService:        userService,
		GroupService:       groupService,
	}, nil
}
