package model

// RegistrationRow is one normalized line of an uploaded exam roster:
// a student registered for a subject sitting on a particular date and
// session.  The roster normalizer produces these rows with raw string
// values; the slot grouper validates and canonicalizes the date and
// session before any slot is created.
//
// Fields:
//  RegNo        – register number of the student.
//  Name         – student name.
//  Department   – department code.
//  Year         – programme year / class label.
//  SubjectCode  – paper code (e.g. "M101").
//  SubjectTitle – paper title.
//  ExamDate     – date string as uploaded; accepted formats are
//                 YYYY-MM-DD, DD-MM-YYYY and DD/MM/YYYY.
//  Session      – session code as uploaded (fn/FN/forenoon, ...).
type RegistrationRow struct {
	RegNo        string `json:"reg_no"`
	Name         string `json:"name"`
	Department   string `json:"department"`
	Year         string `json:"year"`
	SubjectCode  string `json:"subject_code"`
	SubjectTitle string `json:"subject_title"`
	ExamDate     string `json:"exam_date"`
	Session      string `json:"session"`
}
