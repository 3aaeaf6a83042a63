package testutil

import (
	"time"

	"github.com/google/uuid"
)

// Fixed values for deterministic tests.
var (
	TestAssessmentID1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestTime          = time.Date(2026, time.January, 15, 9, 30, 0, 0, time.UTC)
)
