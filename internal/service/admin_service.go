package service

import (
	"context"
	"errors"
	"time"

	"eirybot-assistant-be/internal/config"
	"eirybot-assistant-be/internal/dto"
	"eirybot-assistant-be/internal/repository/contract"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrConversationNotFound = errors.New("conversation not found")

// IAdminService backs the operator dashboard: login plus read-only views
// over conversations, captured leads and the rate-limit ledger.
type IAdminService interface {
	Login(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)
	ListConversations(ctx context.Context, limit, offset int) ([]*dto.ConversationSummaryResponse, error)
	GetTranscript(ctx context.Context, conversationId string) ([]*dto.TranscriptMessageResponse, error)
	ListLeads(ctx context.Context, limit, offset int) ([]*dto.LeadResponse, error)
	ListRateLimits(ctx context.Context, limit, offset int) ([]*dto.RateLimitRecordResponse, error)
}

type adminService struct {
	cfg              config.AdminConfig
	conversationRepo contract.ConversationRepository
	rateLimitRepo    contract.RateLimitRepository
}

func NewAdminService(
	cfg config.AdminConfig,
	conversationRepo contract.ConversationRepository,
	rateLimitRepo contract.RateLimitRepository,
) IAdminService {
	return &adminService{
		cfg:              cfg,
		conversationRepo: conversationRepo,
		rateLimitRepo:    rateLimitRepo,
	}
}

func (s *adminService) Login(_ context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	if req.Username != s.cfg.Username || s.cfg.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub":  req.Username,
		"role": "admin",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JwtSecret))
	if err != nil {
		return nil, err
	}

	return &dto.AdminLoginResponse{Token: signed}, nil
}

func (s *adminService) ListConversations(ctx context.Context, limit, offset int) ([]*dto.ConversationSummaryResponse, error) {
	sessions, err := s.conversationRepo.FindSessions(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ConversationSummaryResponse, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, &dto.ConversationSummaryResponse{
			Id:        session.Id,
			Metadata:  session.Metadata,
			Lead:      session.Lead,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}
	return res, nil
}

func (s *adminService) GetTranscript(ctx context.Context, conversationId string) ([]*dto.TranscriptMessageResponse, error) {
	session, err := s.conversationRepo.FindSession(ctx, conversationId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrConversationNotFound
	}

	messages, err := s.conversationRepo.FindMessages(ctx, conversationId)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.TranscriptMessageResponse, 0, len(messages))
	for _, msg := range messages {
		res = append(res, &dto.TranscriptMessageResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	return res, nil
}

func (s *adminService) ListLeads(ctx context.Context, limit, offset int) ([]*dto.LeadResponse, error) {
	sessions, err := s.conversationRepo.FindSessionsWithLead(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.LeadResponse, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, &dto.LeadResponse{
			ConversationId: session.Id,
			Lead:           session.Lead,
			CapturedAt:     session.UpdatedAt,
		})
	}
	return res, nil
}

func (s *adminService) ListRateLimits(ctx context.Context, limit, offset int) ([]*dto.RateLimitRecordResponse, error) {
	records, err := s.rateLimitRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.RateLimitRecordResponse, 0, len(records))
	for _, record := range records {
		res = append(res, &dto.RateLimitRecordResponse{
			Ip:           record.Ip,
			Count:        record.Count,
			WindowStart:  record.WindowStart,
			BlockedUntil: record.BlockedUntil,
		})
	}
	return res, nil
}
