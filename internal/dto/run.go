package dto

import "time"

// CourseStructureRequest captures one subject's weekly demand.
type CourseStructureRequest struct {
	Subject          string  `json:"subject" validate:"required"`
	RequiredLectures int     `json:"requiredLectures" validate:"min=0"`
	RequiredLabs     int     `json:"requiredLabs" validate:"min=0"`
	LabDurationHours float64 `json:"labDurationHours" validate:"min=0"`
	LectureDuration  float64 `json:"lectureDuration" validate:"min=0"`
}

// TeacherAvailabilityRequest lists the slots a teacher can be scheduled in
// on one weekday.
type TeacherAvailabilityRequest struct {
	Day   string   `json:"day" validate:"required"`
	Slots []string `json:"slots" validate:"required,min=1,dive,required"`
}

// SubjectAssignmentRequest names the teacher responsible for a subject in
// one year, for either lectures or labs.
type SubjectAssignmentRequest struct {
	Year    string `json:"year" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Teacher string `json:"teacher" validate:"required"`
}

// CreateRunRequest is the full department configuration submitted for one
// planning run.
type CreateRunRequest struct {
	Years                 []string                     `json:"years" validate:"required,min=1,dive,required"`
	ClassesPerYear         int                          `json:"classesPerYear" validate:"required,min=1"`
	Teachers              []string                     `json:"teachers" validate:"required,min=1,dive,required"`
	Rooms                 []string                     `json:"rooms" validate:"required,min=1,dive,required"`
	LabRooms              []string                     `json:"labRooms" validate:"required,min=1,dive,required"`
	SubjectsByYear        map[string][]string          `json:"subjectsByYear" validate:"required"`
	CourseStructure       []CourseStructureRequest     `json:"courseStructure" validate:"required,min=1,dive"`
	LectureAssignments    []SubjectAssignmentRequest   `json:"lectureAssignments" validate:"dive"`
	LabAssignments        []SubjectAssignmentRequest   `json:"labAssignments" validate:"dive"`
	TeacherAvailability   map[string][]TeacherAvailabilityRequest `json:"teacherAvailability" validate:"required"`
}

// RunSummary is the list-view projection of a planning run.
type RunSummary struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	LabStatus   string    `json:"labStatus,omitempty"`
	LectStatus  string    `json:"lectureStatus,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// LabAssignmentView is the API representation of one solved lab session.
type LabAssignmentView struct {
	Class   string `json:"class"`
	Subject string `json:"subject"`
	Batch   string `json:"batch"`
	Day     string `json:"day"`
	Start   string `json:"startSlot"`
	End     string `json:"endSlot"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
}

// LectureAssignmentView is the API representation of one solved lecture.
type LectureAssignmentView struct {
	Class        string `json:"class"`
	Subject      string `json:"subject"`
	LectureIndex int    `json:"lectureIndex"`
	Day          string `json:"day"`
	Slot         string `json:"slot"`
	Teacher      string `json:"teacher"`
	Room         string `json:"room"`
}

// RunDetail is the full result of a completed planning run.
type RunDetail struct {
	RunSummary
	Labs      []LabAssignmentView     `json:"labs,omitempty"`
	Lectures  []LectureAssignmentView `json:"lectures,omitempty"`
}
