package domain

import "time"

// Option is one entry of a dropdown: a matricule and its human label.
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Classroom groups students and the matieres taught to them.
type Classroom struct {
	Matricule string `json:"matricule"`
	Name      string `json:"nom"`
}

// Matiere is a subject taught in a classroom.
type Matiere struct {
	Matricule string        `json:"matricule"`
	Name      string        `json:"nom"`
	Status    SubjectStatus `json:"statut,omitempty"`
	Classroom *Classroom    `json:"classroom,omitempty"`
}

// Evaluation is a graded set of questions attached to a matiere.
type Evaluation struct {
	Matricule   string           `json:"matricule"`
	Title       string           `json:"titre"`
	Status      EvaluationStatus `json:"statut,omitempty"`
	ScheduledAt *time.Time       `json:"date_evaluation,omitempty"`
	Matiere     *Matiere         `json:"matiere,omitempty"`
}

// QuestionType distinguishes QCM from free-text questions.
type QuestionType string

const (
	QuestionQCM  QuestionType = "qcm"
	QuestionText QuestionType = "texte"
)

// Choice is one labeled option of a QCM question.
type Choice struct {
	Label   string `json:"label" validate:"required"`
	Text    string `json:"texte" validate:"notblank"`
	Correct bool   `json:"correcte"`
}

// Question belongs to an evaluation. Nested parents are present when the
// backend returns a question for editing.
type Question struct {
	Matricule  string       `json:"matricule"`
	Statement  string       `json:"enonce"`
	Type       QuestionType `json:"type"`
	Choices    []Choice     `json:"options,omitempty"`
	Points     int          `json:"points"`
	Evaluation *Evaluation  `json:"evaluation,omitempty"`
}

// ParentPath returns the selection keys leading to the question, top-down:
// classroom, matiere, evaluation. The path stops at the first missing parent.
func (q Question) ParentPath() []string {
	ev := q.Evaluation
	if ev == nil || ev.Matiere == nil || ev.Matiere.Classroom == nil || ev.Matiere.Classroom.Matricule == "" {
		return nil
	}
	path := []string{ev.Matiere.Classroom.Matricule}
	if ev.Matiere.Matricule == "" {
		return path
	}
	path = append(path, ev.Matiere.Matricule)
	if ev.Matricule == "" {
		return path
	}
	return append(path, ev.Matricule)
}

// QuestionDraft is the payload of a question create or update.
type QuestionDraft struct {
	Matricule  string       `json:"matricule,omitempty"`
	Evaluation string       `json:"evaluation" validate:"required"`
	Statement  string       `json:"enonce" validate:"notblank"`
	Type       QuestionType `json:"type" validate:"oneof=qcm texte"`
	Choices    []Choice     `json:"options,omitempty" validate:"dive"`
	Points     int          `json:"points" validate:"min=1"`
}

// ResultRecord is one participant's outcome for an evaluation.
type ResultRecord struct {
	StudentID         string  `json:"etudiant_id"`
	DisplayName       string  `json:"nom_complet"`
	Rank              int     `json:"rang"`
	ScorePercent      float64 `json:"pourcentage"`
	PointsObtained    float64 `json:"points_obtenus"`
	PointsPossible    float64 `json:"points_total"`
	QuestionsAnswered int     `json:"questions_repondues"`
	QuestionsTotal    int     `json:"questions_total"`
	CorrectCount      int     `json:"bonnes_reponses"`
	Evaluation        string  `json:"evaluation,omitempty"`
}

// ResultSnapshot is the immutable list of results fetched for one page load.
type ResultSnapshot struct {
	Subject   string         `json:"subject"`
	Title     string         `json:"title"`
	Records   []ResultRecord `json:"records"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// Band is the severity color associated to a score.
type Band string

const (
	BandSuccess Band = "success"
	BandWarning Band = "warning"
	BandPrimary Band = "primary"
	BandDanger  Band = "danger"
)

// ResultRow is a display-ready ResultRecord.
type ResultRow struct {
	ResultRecord
	Band Band `json:"band"`
}

// ResultSummary aggregates a snapshot.
type ResultSummary struct {
	Participants int     `json:"participants"`
	Average      float64 `json:"average"`
	Passed       int     `json:"passed"`
	Best         float64 `json:"best"`
}

// Course is a learning resource published in a matiere.
type Course struct {
	Matricule string       `json:"matricule"`
	Title     string       `json:"titre"`
	Status    CourseStatus `json:"statut"`
	ImageURL  string       `json:"image,omitempty"`
	CreatedAt *time.Time   `json:"created_at,omitempty"`
}

// DashboardStats are the counters shown on the trainer dashboard.
type DashboardStats struct {
	Classrooms  int `json:"classrooms"`
	Matieres    int `json:"matieres"`
	Evaluations int `json:"evaluations"`
	Students    int `json:"etudiants"`
}

// Dashboard is assembled from three independent backend calls.
type Dashboard struct {
	Stats             DashboardStats `json:"stats"`
	RecentEvaluations []Evaluation   `json:"recentEvaluations"`
	RecentCourses     []Course       `json:"recentCourses"`
}

// Theme is the light/dark display preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark".
func ParseTheme(raw string) (Theme, error) {
	switch Theme(raw) {
	case ThemeLight, ThemeDark:
		return Theme(raw), nil
	}
	return "", ErrInvalidTheme
}
