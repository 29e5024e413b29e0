package domain

// SubjectType differentiates end-user tokens from operator tokens.
type SubjectType string

const (
	SubjectTypeUser     SubjectType = "USER"
	SubjectTypeOperator SubjectType = "OPERATOR"
)
