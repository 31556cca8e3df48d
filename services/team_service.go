package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Respawn-League/citadel/models"
	"github.com/Respawn-League/citadel/repositories"
	"github.com/Respawn-League/citadel/storage"
)

type CreateTeamInput struct {
	Name      string `json:"name"`
	CreatorID int    `json:"-"`
}

// TeamService управляет командами и их составом. Создатель команды
// становится её капитаном и получает членство.
type TeamService struct {
	teamRepo repositories.TeamRepository
	userRepo repositories.UserRepository
	oracle   *PermissionOracle
	uploader storage.FileUploader
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	oracle *PermissionOracle,
	uploader storage.FileUploader,
) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
		oracle:   oracle,
		uploader: uploader,
	}
}

func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTeamNameRequired
	}

	creator, err := s.userRepo.GetByID(ctx, input.CreatorID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if creator.TeamID != nil {
		return nil, ErrUserAlreadyInTeam
	}

	team := &models.Team{
		Name:      strings.TrimSpace(input.Name),
		CaptainID: creator.ID,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, err
	}

	creator.TeamID = &team.ID
	if err := s.userRepo.Update(ctx, creator); err != nil {
		return nil, fmt.Errorf("failed to attach creator to team: %w", err)
	}

	return team, nil
}

func (s *TeamService) GetTeamByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	s.populateTeamLogoURL(team)
	return team, nil
}

func (s *TeamService) ListMembers(ctx context.Context, teamID int) ([]models.User, error) {
	members, err := s.userRepo.ListByTeamID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	for i := range members {
		members[i].PasswordHash = ""
	}
	return members, nil
}

// AddMember добавляет пользователя в команду. Требует права edit team в
// скоупе команды.
func (s *TeamService) AddMember(ctx context.Context, teamID, userID int, actor *models.User) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}

	granted, err := s.oracle.Grants(ctx, actor, models.ActionEdit, models.SubjectTeam, TeamScope(team))
	if err != nil {
		return err
	}
	if !granted {
		return ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.TeamID != nil {
		return ErrUserAlreadyInTeam
	}

	user.TeamID = &team.ID
	return s.userRepo.Update(ctx, user)
}

// UploadLogo сохраняет логотип команды в объектное хранилище и запоминает
// ключ. Старый логотип удаляется best-effort.
func (s *TeamService) UploadLogo(ctx context.Context, teamID int, contentType string, reader io.Reader, actor *models.User) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	granted, err := s.oracle.Grants(ctx, actor, models.ActionEdit, models.SubjectTeam, TeamScope(team))
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, ErrForbidden
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("teams/%d/logo%s", team.ID, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	oldKey := team.LogoKey
	team.LogoKey = &result.Key
	if err := s.teamRepo.UpdateLogoKey(ctx, team.ID, team.LogoKey); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != result.Key {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	s.populateTeamLogoURL(team)
	return team, nil
}

func (s *TeamService) populateTeamLogoURL(team *models.Team) {
	if team.LogoKey == nil || *team.LogoKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*team.LogoKey); url != "" {
		team.LogoURL = &url
	}
}

func extensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("unsupported logo content type %q", contentType)
	}
}
