package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_ALREADY_REGISTERED"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrStaffAccessOnly   ErrCode = "STAFF_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Exam taking ───────────────────────────────────────────────────
	ErrExamNotAvailable      ErrCode = "EXAM_NOT_AVAILABLE"
	ErrExamNotAssigned       ErrCode = "EXAM_NOT_ASSIGNED"
	ErrAttemptsExhausted     ErrCode = "MAX_ATTEMPTS_REACHED"
	ErrInsufficientQuestions ErrCode = "INSUFFICIENT_QUESTIONS"
	ErrQuotaMismatch         ErrCode = "QUOTA_MISMATCH"
	ErrPaperNotFound         ErrCode = "PAPER_NOT_FOUND"
	ErrPaperNotStarted       ErrCode = "PAPER_NOT_STARTED"
	ErrAlreadySubmitted      ErrCode = "ALREADY_SUBMITTED"
	ErrQuestionNotInPaper    ErrCode = "QUESTION_NOT_IN_PAPER"
	ErrResultNotReady        ErrCode = "RESULT_NOT_READY"

	// ─── Exam management ───────────────────────────────────────────────
	ErrExamNotDraft       ErrCode = "EXAM_NOT_DRAFT"
	ErrInvalidTransition  ErrCode = "INVALID_STATUS_TRANSITION"
	ErrNoQuestions        ErrCode = "NO_QUESTIONS"
	ErrSessionNotActive   ErrCode = "SESSION_NOT_ACTIVE"
	ErrStudentsNotFound   ErrCode = "STUDENTS_NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Incorrect email or password."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrStaffAccessOnly:
		return "This resource is restricted to staff."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Exam taking ───────────────────────────────────────────────────
	case ErrExamNotAvailable:
		return "This exam is not currently available."
	case ErrExamNotAssigned:
		return "You are not assigned to this exam."
	case ErrAttemptsExhausted:
		return "You have used all allowed attempts for this exam."
	case ErrInsufficientQuestions:
		return "The question bank does not have enough questions for this exam."
	case ErrQuotaMismatch:
		return "The difficulty distribution does not match the exam's question count."
	case ErrPaperNotFound:
		return "Exam paper not found."
	case ErrPaperNotStarted:
		return "The exam has not been started yet."
	case ErrAlreadySubmitted:
		return "This exam has already been submitted."
	case ErrQuestionNotInPaper:
		return "This question is not part of your paper."
	case ErrResultNotReady:
		return "The result is not available yet."

	// ─── Exam management ───────────────────────────────────────────────
	case ErrExamNotDraft:
		return "This exam is not in DRAFT status."
	case ErrInvalidTransition:
		return "The exam cannot move to the requested status."
	case ErrNoQuestions:
		return "This exam has no questions."
	case ErrSessionNotActive:
		return "No active monitoring session for this exam."
	case ErrStudentsNotFound:
		return "One or more students were not found."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
