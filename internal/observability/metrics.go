package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Validation failure reasons used as label values.
const (
	ReasonInvalidUsername = "invalid_username"
	ReasonInvalidDuration = "invalid_duration"
	ReasonUnknownUser     = "unknown_user"
)

var (
	usersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Name:      "users_created_total",
		Help:      "Number of users created through the create-or-fetch endpoint.",
	})

	exercisesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Name:      "exercises_created_total",
		Help:      "Number of exercise entries persisted.",
	})

	validationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Name:      "validation_failures_total",
		Help:      "Rejected requests by reason.",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(usersCreated, exercisesCreated, validationFailures)
}

// RecordUserCreated counts a newly persisted user.
func RecordUserCreated() { usersCreated.Inc() }

// RecordExerciseCreated counts a newly persisted exercise.
func RecordExerciseCreated() { exercisesCreated.Inc() }

// RecordValidationFailure counts a rejected request under reason.
func RecordValidationFailure(reason string) {
	validationFailures.WithLabelValues(reason).Inc()
}
