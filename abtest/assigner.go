// Package abtest implements deterministic experiment bucketing. The
// assignment is a pure function of (test id, session id), so the same
// session lands in the same bucket for the life of a test without any
// persisted per-session mapping.
package abtest

import (
	"fmt"
	"hash/fnv"
	"time"

	"qrmenu-reco/database/abtests"
	models "qrmenu-reco/database/models_pkg"
)

// Assignment is the outcome of bucketing one session
type Assignment struct {
	Group            string `json:"group"`
	AlgorithmVersion string `json:"algorithm_version"`
	TestID           int64  `json:"test_id,omitempty"`
	TestName         string `json:"test_name,omitempty"`
}

// Assign buckets a session for the given test. A nil test, a test not
// currently running, or a session hashing outside the traffic split all
// resolve to control. defaultVersion is served when no test applies.
func Assign(test *models.ABTestConfig, sessionID, defaultVersion string, now time.Time) Assignment {
	if test == nil || test.Status != abtests.StatusRunning ||
		now.Before(test.StartsAt) || !now.Before(test.EndsAt) {
		return Assignment{Group: abtests.GroupControl, AlgorithmVersion: defaultVersion}
	}

	if Bucket(test.ID, sessionID) < test.TrafficSplitPct {
		return Assignment{
			Group:            abtests.GroupVariant,
			AlgorithmVersion: test.VariantAlgorithm,
			TestID:           test.ID,
			TestName:         test.Name,
		}
	}
	return Assignment{
		Group:            abtests.GroupControl,
		AlgorithmVersion: test.ControlAlgorithm,
		TestID:           test.ID,
		TestName:         test.Name,
	}
}

// Bucket hashes (testID, sessionID) into [0, 100). FNV-1a is stable and
// never reseeded, which is what makes assignments sticky.
func Bucket(testID int64, sessionID string) int {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%s", testID, sessionID)
	return int(h.Sum64() % 100)
}
