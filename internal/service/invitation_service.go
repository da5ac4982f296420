package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/mailer"
	"github.com/damoang/angple-memo/internal/repository"
	"github.com/damoang/angple-memo/pkg/logger"
)

// InvitationMailer delivers invitation emails
type InvitationMailer interface {
	IsConfigured() bool
	SendInvitation(ctx context.Context, to string, data mailer.InvitationData) error
}

// InvitationService handles group invitations
type InvitationService struct {
	invitationRepo repository.InvitationRepository
	groupRepo      repository.GroupRepository
	userRepo       repository.UserRepository
	mailer         InvitationMailer
	ttl            time.Duration
	acceptURLBase  string
	now            func() time.Time
}

// NewInvitationService creates a new InvitationService. mail may be nil.
func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	mail InvitationMailer,
	ttl time.Duration,
	acceptURLBase string,
) *InvitationService {
	if ttl <= 0 {
		ttl = domain.DefaultInvitationTTL
	}
	return &InvitationService{
		invitationRepo: invitationRepo,
		groupRepo:      groupRepo,
		userRepo:       userRepo,
		mailer:         mail,
		ttl:            ttl,
		acceptURLBase:  strings.TrimRight(acceptURLBase, "/"),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *InvitationService) acceptURL(token string) string {
	if s.acceptURLBase == "" {
		return ""
	}
	return s.acceptURLBase + "/" + url.PathEscape(token)
}

func (s *InvitationService) managedGroup(ctx context.Context, groupID uint64, user *domain.User) (*domain.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.CanManage(user.ID) {
		return nil, common.ErrForbidden
	}
	return group, nil
}

// Create invites email into the group. Only the owner may invite admins.
func (s *InvitationService) Create(ctx context.Context, groupID uint64, inviter *domain.User, req *domain.InvitationRequest) (*domain.InvitationResponse, error) {
	group, err := s.managedGroup(ctx, groupID, inviter)
	if err != nil {
		return nil, err
	}

	role := domain.RoleMember
	if req.Role != "" {
		role, err = domain.ParseRole(req.Role)
		if err != nil || role == domain.RoleOwner {
			return nil, common.NewFieldError("role", "must be member or admin")
		}
	}
	if role == domain.RoleAdmin && group.OwnerID != inviter.ID {
		return nil, common.ErrForbidden
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	inv := &domain.Invitation{
		GroupID:     group.ID,
		InvitedByID: inviter.ID,
		Email:       email,
		Role:        role,
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if group.CanView(existing.ID) {
			return nil, common.ErrConflict
		}
		inv.InvitedUserID = &existing.ID
	case errors.Is(err, common.ErrUserNotFound):
	default:
		return nil, err
	}

	now := s.now()
	token, err := uniqueToken(ctx, NewInvitationToken, s.invitationRepo.TokenExists, s.now)
	if err != nil {
		return nil, fmt.Errorf("generate invitation token: %w", err)
	}
	inv.Token = token
	inv.ExpiresAt = now.Add(s.ttl)
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	resp := &domain.InvitationResponse{
		Invitation: inv,
		Token:      token,
		State:      inv.State(now),
		AcceptURL:  s.acceptURL(token),
	}

	if s.mailer != nil && s.mailer.IsConfigured() {
		data := mailer.InvitationData{
			GroupName:   group.Name,
			InviterName: inviter.Name,
			Role:        role.String(),
			AcceptURL:   resp.AcceptURL,
			ExpiresAt:   inv.ExpiresAt,
		}
		if err := s.mailer.SendInvitation(ctx, email, data); err != nil {
			logger.Warn("invitation %d mail to %s failed: %v", inv.ID, email, err)
		}
	}
	return resp, nil
}

// ListPending returns the group's open invitations
func (s *InvitationService) ListPending(ctx context.Context, groupID uint64, user *domain.User) ([]*domain.InvitationResponse, error) {
	if _, err := s.managedGroup(ctx, groupID, user); err != nil {
		return nil, err
	}
	now := s.now()
	invitations, err := s.invitationRepo.ListPending(ctx, groupID, now)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	out := make([]*domain.InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		out = append(out, &domain.InvitationResponse{Invitation: inv, State: inv.State(now)})
	}
	return out, nil
}

// Revoke deletes an invitation of the group
func (s *InvitationService) Revoke(ctx context.Context, groupID, invitationID uint64, user *domain.User) error {
	if _, err := s.managedGroup(ctx, groupID, user); err != nil {
		return err
	}
	inv, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.GroupID != groupID {
		return common.ErrInvitationNotFound
	}
	return s.invitationRepo.Delete(ctx, invitationID)
}

// Accept turns the invitation into a membership for user
func (s *InvitationService) Accept(ctx context.Context, token string, user *domain.User) (*domain.InvitationResponse, error) {
	inv, err := s.invitationRepo.FindByToken(ctx, token)
	if err != nil {
		invitationsAcceptedTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}
	if !inv.AddressedTo(user) {
		invitationsAcceptedTotal.WithLabelValues("forbidden").Inc()
		return nil, common.ErrForbidden
	}
	now := s.now()
	if inv.State(now) != domain.InvitationPending {
		invitationsAcceptedTotal.WithLabelValues("unavailable").Inc()
		return nil, common.ErrInvitationUnavailable
	}
	if !s.invitationRepo.Accept(ctx, inv, user.ID, now) {
		invitationsAcceptedTotal.WithLabelValues("rejected").Inc()
		return nil, common.ErrInvitationUnavailable
	}
	invitationsAcceptedTotal.WithLabelValues("accepted").Inc()
	return &domain.InvitationResponse{Invitation: inv, State: inv.State(now)}, nil
}
