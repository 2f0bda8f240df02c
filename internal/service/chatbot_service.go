package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"legal-aid-be/internal/constant"
	"legal-aid-be/internal/dto"
	"legal-aid-be/internal/entity"
	"legal-aid-be/internal/pkg/logger"
	"legal-aid-be/internal/repository/specification"
	"legal-aid-be/internal/repository/unitofwork"
	"legal-aid-be/pkg/chat"
	"legal-aid-be/pkg/llm"

	"github.com/google/uuid"
)

type IChatbotService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error
}

type chatbotService struct {
	uowFactory   unitofwork.RepositoryFactory
	llmProvider  llm.LLMProvider
	conversation chat.Conversation
	logger       logger.ILogger
	providerName string
}

func NewChatbotService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	providerName string,
	logger logger.ILogger,
) IChatbotService {
	return &chatbotService{
		uowFactory:  uowFactory,
		llmProvider: llmProvider,
		conversation: chat.Conversation{
			Persona:  constant.ChatPersonaPromptV1,
			Greeting: constant.ChatGreetingV1,
			Instruction: func(question string) string {
				return fmt.Sprintf(constant.ChatAnswerInstructionV1, question)
			},
			Window: constant.ChatHistoryWindow,
		},
		logger:       logger,
		providerName: providerName,
	}
}

// CreateSession stores the session with its two seed turns.
func (cs *chatbotService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	chatSession := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     constant.ChatDefaultTitle,
		CreatedAt: now,
	}

	seed := cs.conversation.Seed()
	messages := make([]*entity.ChatMessage, 0, len(seed))
	for _, t := range seed {
		messages = append(messages, &entity.ChatMessage{
			Id:            uuid.New(),
			Chat:          t.Text,
			Role:          t.Role,
			ChatSessionId: chatSession.Id,
			VisibleToUser: t.VisibleToUser,
			Seed:          true,
		})
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().CreateBulk(ctx, messages); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: chatSession.Id, Greeting: constant.ChatGreetingV1}, nil
}

func (cs *chatbotService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.Chronological{Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(chatSessions))
	for _, s := range chatSessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:            s.Id,
			Title:         s.Title,
			LastMessageAt: s.LastMessageAt,
			CreatedAt:     s.CreatedAt,
			UpdatedAt:     s.UpdatedAt,
		})
	}

	return response, nil
}

// GetChatHistory returns only the turns meant for display.
func (cs *chatbotService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.findOwnedSession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.VisibleToUser{},
		specification.Chronological{},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.GetChatHistoryResponse, 0, len(chatMessages))
	for _, msg := range chatMessages {
		resp = append(resp, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			CreatedAt: msg.CreatedAt,
		})
	}

	return resp, nil
}

// SendChat makes exactly one provider call. Nothing is stored when the
// call fails.
func (cs *chatbotService) SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSession, err := cs.findOwnedSession(ctx, uow, userId, request.ChatSessionId)
	if err != nil {
		return nil, err
	}

	existing, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: request.ChatSessionId},
		specification.Chronological{},
	)
	if err != nil {
		return nil, err
	}

	turns := make([]chat.Turn, 0, len(existing))
	nonSeed := 0
	for _, m := range existing {
		turns = append(turns, chat.Turn{Role: m.Role, Text: m.Chat, VisibleToUser: m.VisibleToUser, Seed: m.Seed})
		if !m.Seed {
			nonSeed++
		}
	}

	question := strings.TrimSpace(request.Chat)
	started := time.Now()
	reply, err := cs.llmProvider.Chat(ctx, cs.conversation.Messages(turns, question),
		llm.WithTemperature(constant.ChatTemperature),
		llm.WithMaxTokens(constant.ChatMaxOutputTokens),
	)
	if err != nil {
		cs.logger.Error("CHATBOT", "Provider call failed", map[string]interface{}{
			"session_id": request.ChatSessionId.String(),
			"error":      err.Error(),
		})
		return nil, err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = constant.ChatAnswerEmptyReply
	}
	latency := time.Since(started)

	now := time.Now()
	userMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          question,
		Role:          constant.ChatMessageRoleUser,
		ChatSessionId: chatSession.Id,
		VisibleToUser: true,
	}
	modelMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          reply,
		Role:          constant.ChatMessageRoleModel,
		ChatSessionId: chatSession.Id,
		VisibleToUser: true,
		Metadata: map[string]interface{}{
			"provider":   cs.providerName,
			"latency_ms": latency.Milliseconds(),
		},
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().CreateBulk(ctx, []*entity.ChatMessage{userMessage, modelMessage}); err != nil {
		return nil, err
	}

	if nonSeed == 0 {
		chatSession.Title = chat.Title(question)
		if err := uow.ChatSessionRepository().SetTitle(ctx, chatSession.Id, chatSession.Title); err != nil {
			return nil, err
		}
	}
	if err := uow.ChatSessionRepository().Touch(ctx, chatSession.Id, now); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	cs.logger.Info("CHATBOT", "Chat answered", map[string]interface{}{
		"session_id": chatSession.Id.String(),
		"latency_ms": latency.Milliseconds(),
		"history":    nonSeed,
	})

	return &dto.SendChatResponse{
		ChatSessionId:    chatSession.Id,
		ChatSessionTitle: chatSession.Title,
		Sent: &dto.SendChatResponseChat{
			Id:        userMessage.Id,
			Chat:      userMessage.Chat,
			Role:      userMessage.Role,
			CreatedAt: userMessage.CreatedAt,
		},
		Reply: &dto.SendChatResponseChat{
			Id:        modelMessage.Id,
			Chat:      modelMessage.Chat,
			Role:      modelMessage.Role,
			CreatedAt: modelMessage.CreatedAt,
		},
	}, nil
}

func (cs *chatbotService) DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.findOwnedSession(ctx, uow, userId, request.ChatSessionId); err != nil {
		return err
	}

	return unitofwork.InTransaction(ctx, cs.uowFactory, func(tx unitofwork.UnitOfWork) error {
		return tx.ChatSessionRepository().Delete(ctx, request.ChatSessionId)
	})
}

func (cs *chatbotService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}
