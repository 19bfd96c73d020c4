package register

import (
	"testing"

	"entrada/models"
)

func TestSummarize(t *testing.T) {
	speakerPrivs := []string{"Lunch", "Gift"}
	visitorPrivs := []string{"Lunch"}

	attendees := []models.Attendee{
		{RoleName: "Speaker", Privileges: speakerPrivs, Claims: models.NewClaims(speakerPrivs), Entered: true},
		{RoleName: "Speaker", Privileges: speakerPrivs, Claims: models.NewClaims(speakerPrivs)},
		{RoleName: "Visitor", Privileges: visitorPrivs, Claims: models.NewClaims(visitorPrivs), Entered: true},
	}
	attendees[0].Claims["lunch"] = true
	attendees[2].Claims["lunch"] = true

	summary := Summarize(attendees)
	if len(summary) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(summary))
	}

	speaker := summary[0]
	if speaker.Role != "Speaker" || speaker.Registered != 2 || speaker.Entered != 1 {
		t.Fatalf("speaker summary wrong: %+v", speaker)
	}
	if speaker.Claimed["lunch"] != 1 || speaker.Claimed["gift"] != 0 {
		t.Fatalf("speaker claim counts wrong: %v", speaker.Claimed)
	}

	visitor := summary[1]
	if visitor.Role != "Visitor" || visitor.Registered != 1 || visitor.Entered != 1 {
		t.Fatalf("visitor summary wrong: %+v", visitor)
	}
}
