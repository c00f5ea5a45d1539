package task

import "errors"

// Domain errors. Callers match these with errors.Is; the API layer pairs
// them with Arabic messages via ArabicMessage.
var (
	ErrValidation          = errors.New("task: validation failed")
	ErrInvalidStatus       = errors.New("task: invalid status")
	ErrForbiddenTransition = errors.New("task: transition not allowed")
	ErrReviewerRequired    = errors.New("task: reviewer required")
	ErrAlreadyAssigned     = errors.New("task: already assigned")
	ErrUnauthorized        = errors.New("task: unauthorized")
	ErrNotFound            = errors.New("task: not found")
)

// arabicMessages carries the rule messages shown by the original dashboard.
var arabicMessages = []struct {
	err error
	msg string
}{
	{ErrReviewerRequired, "يجب تعيين مراجع للمهمة أولاً"},
	{ErrForbiddenTransition, "غير مصرح لك بتغيير حالة المهمة إلى هذه الحالة"},
	{ErrAlreadyAssigned, "المهمة مسندة بالفعل إلى موظف آخر"},
	{ErrInvalidStatus, "حالة المهمة غير صالحة"},
	{ErrUnauthorized, "غير مصرح لك بتنفيذ هذا الإجراء"},
	{ErrNotFound, "المهمة غير موجودة"},
	{ErrValidation, "البيانات المدخلة غير صالحة"},
}

// ArabicMessage returns the Arabic rule message for a domain error, or an
// empty string for errors outside the domain taxonomy.
func ArabicMessage(err error) string {
	for _, m := range arabicMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return ""
}
