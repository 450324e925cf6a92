package session

import "keubot/pkg/ocr"

// Mode names the interaction a user is currently inside.
type Mode int

const (
	ModeIdle Mode = iota
	ModeOCRImage
	ModeOCRConfirmation
	ModeAttendanceLocation
	ModeAttendancePhoto
)

func (m Mode) String() string {
	switch m {
	case ModeOCRImage:
		return "ocr_image"
	case ModeOCRConfirmation:
		return "ocr_confirmation"
	case ModeAttendanceLocation:
		return "attendance_location"
	case ModeAttendancePhoto:
		return "attendance_photo"
	default:
		return "idle"
	}
}

// State is one of Idle, OCRImage, OCRConfirmation, AttendanceLocation or
// AttendancePhoto.
type State interface {
	Mode() Mode
}

// Idle is the absence of an interaction.
type Idle struct{}

// OCRImage waits for a receipt photo.
type OCRImage struct{}

// OCRConfirmation holds OCR output until the user confirms, edits or cancels.
type OCRConfirmation struct {
	RawText     string
	CleanedText string
	Confidence  float64
	Candidates  []ocr.Candidate
}

// AttendanceLocation waits for a location share.
type AttendanceLocation struct {
	Type string
}

// AttendancePhoto waits for the selfie after a valid location.
type AttendancePhoto struct {
	Type      string
	Latitude  float64
	Longitude float64
	Distance  int
}

func (Idle) Mode() Mode               { return ModeIdle }
func (OCRImage) Mode() Mode           { return ModeOCRImage }
func (OCRConfirmation) Mode() Mode    { return ModeOCRConfirmation }
func (AttendanceLocation) Mode() Mode { return ModeAttendanceLocation }
func (AttendancePhoto) Mode() Mode    { return ModeAttendancePhoto }

// InCapture reports whether the mode waits for an image or a location.
func (m Mode) InCapture() bool {
	return m == ModeOCRImage || m == ModeAttendanceLocation || m == ModeAttendancePhoto
}
