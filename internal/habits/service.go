package habits

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nosmoke-app/backend/internal/docstore"
	"github.com/nosmoke-app/backend/pkg/types"
)

const questionnairesCollection = "questionnaires"

// Smoking status values
const (
	StatusSmoker    = "smoker"
	StatusNonSmoker = "non_smoker"
	StatusExSmoker  = "ex_smoker"
)

// SmokingHabits is the questionnaire payload describing a user's habit
type SmokingHabits struct {
	SessionID       string   `json:"sessionId"`
	SmokingStatus   string   `json:"smokingStatus" binding:"required,oneof=smoker non_smoker ex_smoker"`
	DailyCigarettes *int     `json:"dailyCigarettes" binding:"omitempty,gte=1,lte=100"`
	SmokingYears    *int     `json:"smokingYears" binding:"omitempty,gte=1,lte=80"`
	QuitDate        string   `json:"quitDate" binding:"omitempty"`
	CigaretteType   string   `json:"cigaretteType" binding:"omitempty,oneof=traditional electronic both"`
	TarContent      *float64 `json:"tarContent" binding:"omitempty,gte=1,lte=25"`
	NicotineContent *float64 `json:"nicotineContent" binding:"omitempty,gte=0.1,lte=3.0"`
	QuitIntention   string   `json:"quitIntention" binding:"omitempty,oneof=planning considering not_interested"`
	SmokingPattern  []string `json:"smokingPattern" binding:"omitempty,dive,oneof=morning afternoon evening night"`
}

// FieldError describes one rejected questionnaire field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SubmissionResult is returned after a questionnaire is accepted
type SubmissionResult struct {
	QuestionnaireID string        `json:"questionnaireId"`
	SessionID       string        `json:"sessionId"`
	SubmittedAt     time.Time     `json:"submittedAt"`
	SmokingHabits   SmokingHabits `json:"smokingHabits"`
}

// Service stores and retrieves smoking-habit questionnaires
type Service struct {
	docs docstore.DocumentStore
}

// NewService creates a questionnaire service over the document store
func NewService(docs docstore.DocumentStore) *Service {
	return &Service{docs: docs}
}

// Submit validates the questionnaire's cross-field rules and persists it
func (s *Service) Submit(ctx context.Context, habits *SmokingHabits) (*SubmissionResult, error) {
	if errs := validate(habits); len(errs) > 0 {
		return nil, types.NewValidation("questionnaire data is invalid", errs)
	}

	questionnaireID := "quest_" + shortID()
	sessionID := habits.SessionID
	if sessionID == "" {
		sessionID = "sess_" + shortID()
	}
	submittedAt := time.Now().UTC()

	fields := map[string]interface{}{
		"questionnaireId": questionnaireID,
		"sessionId":       sessionID,
		"smokingStatus":   habits.SmokingStatus,
		"submittedAt":     submittedAt,
	}
	if habits.DailyCigarettes != nil {
		fields["dailyCigarettes"] = *habits.DailyCigarettes
	}
	if habits.SmokingYears != nil {
		fields["smokingYears"] = *habits.SmokingYears
	}
	if habits.QuitDate != "" {
		fields["quitDate"] = habits.QuitDate
	}
	if habits.CigaretteType != "" {
		fields["cigaretteType"] = habits.CigaretteType
	}
	if habits.TarContent != nil {
		fields["tarContent"] = *habits.TarContent
	}
	if habits.NicotineContent != nil {
		fields["nicotineContent"] = *habits.NicotineContent
	}
	if habits.QuitIntention != "" {
		fields["quitIntention"] = habits.QuitIntention
	}
	if len(habits.SmokingPattern) > 0 {
		fields["smokingPattern"] = habits.SmokingPattern
	}

	if err := s.docs.Set(ctx, questionnairesCollection, questionnaireID, fields, false); err != nil {
		log.Error().Err(err).Str("questionnaire_id", questionnaireID).Msg("failed to store questionnaire")
		return nil, types.NewInternal()
	}

	log.Info().
		Str("questionnaire_id", questionnaireID).
		Str("session_id", sessionID).
		Str("smoking_status", habits.SmokingStatus).
		Msg("questionnaire stored")

	habits.SessionID = sessionID
	return &SubmissionResult{
		QuestionnaireID: questionnaireID,
		SessionID:       sessionID,
		SubmittedAt:     submittedAt,
		SmokingHabits:   *habits,
	}, nil
}

// Get retrieves a stored questionnaire by id
func (s *Service) Get(ctx context.Context, questionnaireID string) (map[string]interface{}, error) {
	fields, found, err := s.docs.Get(ctx, questionnairesCollection, questionnaireID)
	if err != nil {
		log.Error().Err(err).Str("questionnaire_id", questionnaireID).Msg("failed to read questionnaire")
		return nil, types.NewInternal()
	}
	if !found {
		return nil, types.NewNotFound("questionnaire not found")
	}
	return fields, nil
}

// validate applies the cross-field rules the binding tags cannot express
func validate(h *SmokingHabits) []FieldError {
	var errs []FieldError

	if h.SmokingStatus == StatusSmoker {
		if h.DailyCigarettes == nil {
			errs = append(errs, FieldError{Field: "dailyCigarettes", Message: "daily cigarette count is required for smokers"})
		}
		if h.CigaretteType == "" {
			errs = append(errs, FieldError{Field: "cigaretteType", Message: "cigarette type is required for smokers"})
		}
	}

	if h.SmokingStatus == StatusSmoker || h.SmokingStatus == StatusExSmoker {
		if h.SmokingYears == nil {
			errs = append(errs, FieldError{Field: "smokingYears", Message: "years smoked is required for current and former smokers"})
		}
	}

	if h.SmokingStatus == StatusExSmoker {
		if h.QuitDate == "" {
			errs = append(errs, FieldError{Field: "quitDate", Message: "quit date is required for former smokers"})
		}
	}

	if h.QuitDate != "" {
		quit, err := time.Parse("2006-01", h.QuitDate)
		if err != nil {
			errs = append(errs, FieldError{Field: "quitDate", Message: "quit date must use the YYYY-MM format"})
		} else if quit.After(time.Now()) {
			errs = append(errs, FieldError{Field: "quitDate", Message: "quit date cannot be in the future"})
		}
	}

	return errs
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
