package domain

import (
	"encoding/json"
	"fmt"
)

// Badge is how a status is rendered.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type CourseStatus string

const (
	CourseDraft     CourseStatus = "Brouillon"
	CoursePublished CourseStatus = "Publié"
	CourseArchived  CourseStatus = "Archivé"
	// CourseUnknown is what a decoded value outside the table becomes.
	CourseUnknown CourseStatus = "Inconnu"
)

var courseBadges = map[CourseStatus]Badge{
	CourseDraft:     {Label: "Brouillon", Color: "secondary", Icon: "pencil"},
	CoursePublished: {Label: "Publié", Color: "success", Icon: "check-circle"},
	CourseArchived:  {Label: "Archivé", Color: "dark", Icon: "archive"},
}

type EvaluationStatus string

const (
	EvaluationDraft     EvaluationStatus = "Brouillon"
	EvaluationScheduled EvaluationStatus = "Programmée"
	EvaluationRunning   EvaluationStatus = "En cours"
	EvaluationFinished  EvaluationStatus = "Terminée"
	EvaluationUnknown   EvaluationStatus = "Inconnu"
)

var evaluationBadges = map[EvaluationStatus]Badge{
	EvaluationDraft:     {Label: "Brouillon", Color: "secondary", Icon: "pencil"},
	EvaluationScheduled: {Label: "Programmée", Color: "info", Icon: "calendar"},
	EvaluationRunning:   {Label: "En cours", Color: "warning", Icon: "clock"},
	EvaluationFinished:  {Label: "Terminée", Color: "success", Icon: "check-circle"},
}

type SubjectStatus string

const (
	SubjectActive   SubjectStatus = "Active"
	SubjectInactive SubjectStatus = "Inactive"
	SubjectUnknown  SubjectStatus = "Inconnu"
)

var subjectBadges = map[SubjectStatus]Badge{
	SubjectActive:   {Label: "Active", Color: "success", Icon: "toggle-on"},
	SubjectInactive: {Label: "Inactive", Color: "danger", Icon: "toggle-off"},
}

// unknownBadge renders the Unknown variant of every status type.
var unknownBadge = Badge{Label: "Inconnu", Color: "light", Icon: "question-circle"}

func ParseCourseStatus(raw string) (CourseStatus, error) {
	return parseStatus(raw, courseBadges)
}

func ParseEvaluationStatus(raw string) (EvaluationStatus, error) {
	return parseStatus(raw, evaluationBadges)
}

func ParseSubjectStatus(raw string) (SubjectStatus, error) {
	return parseStatus(raw, subjectBadges)
}

func (s CourseStatus) Badge() Badge     { return badgeOf(s, courseBadges) }
func (s EvaluationStatus) Badge() Badge { return badgeOf(s, evaluationBadges) }
func (s SubjectStatus) Badge() Badge    { return badgeOf(s, subjectBadges) }

func (s CourseStatus) Known() bool     { _, ok := courseBadges[s]; return ok }
func (s EvaluationStatus) Known() bool { _, ok := evaluationBadges[s]; return ok }
func (s SubjectStatus) Known() bool    { _, ok := subjectBadges[s]; return ok }

func (s *CourseStatus) UnmarshalJSON(b []byte) error {
	return unmarshalStatus(b, courseBadges, CourseUnknown, s)
}

func (s *EvaluationStatus) UnmarshalJSON(b []byte) error {
	return unmarshalStatus(b, evaluationBadges, EvaluationUnknown, s)
}

func (s *SubjectStatus) UnmarshalJSON(b []byte) error {
	return unmarshalStatus(b, subjectBadges, SubjectUnknown, s)
}

// CourseStatuses lists every course status in display order.
func CourseStatuses() []CourseStatus {
	return []CourseStatus{CourseDraft, CoursePublished, CourseArchived}
}

// EvaluationStatuses lists every evaluation status in lifecycle order.
func EvaluationStatuses() []EvaluationStatus {
	return []EvaluationStatus{EvaluationDraft, EvaluationScheduled, EvaluationRunning, EvaluationFinished}
}

// SubjectStatuses lists every subject status.
func SubjectStatuses() []SubjectStatus {
	return []SubjectStatus{SubjectActive, SubjectInactive}
}

func parseStatus[S ~string](raw string, table map[S]Badge) (S, error) {
	s := S(raw)
	if _, ok := table[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

func badgeOf[S ~string](s S, table map[S]Badge) Badge {
	if s == "" {
		return Badge{}
	}
	if b, ok := table[s]; ok {
		return b
	}
	return unknownBadge
}

// unmarshalStatus leaves dst empty for a null or empty value. A value outside
// table decodes to unknown so one odd entity never fails a whole list.
func unmarshalStatus[S ~string](b []byte, table map[S]Badge, unknown S, dst *S) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil || *raw == "" {
		*dst = ""
		return nil
	}
	s, err := parseStatus(*raw, table)
	if err != nil {
		*dst = unknown
		return nil
	}
	*dst = s
	return nil
}
