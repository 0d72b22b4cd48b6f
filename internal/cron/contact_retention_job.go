package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/webyarden/webyarden-backend/pkg/logger"
)

const defaultContactRetention = 365 * 24 * time.Hour

// ContactRetentionJobParams configure the contact purge.
type ContactRetentionJobParams struct {
	Logger    *logger.Logger
	Contacts  completedContactPurger
	Retention time.Duration
}

type completedContactPurger interface {
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewContactRetentionJob builds the job that deletes old completed contact requests.
func NewContactRetentionJob(params ContactRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Contacts == nil {
		return nil, fmt.Errorf("contact repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultContactRetention
	}
	return &contactRetentionJob{
		logg:      params.Logger,
		contacts:  params.Contacts,
		retention: retention,
		now:       time.Now,
	}, nil
}

type contactRetentionJob struct {
	logg      *logger.Logger
	contacts  completedContactPurger
	retention time.Duration
	now       func() time.Time
}

func (j *contactRetentionJob) Name() string { return "contact-retention" }

func (j *contactRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	count, err := j.contacts.DeleteCompletedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete completed contacts: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"count":  count,
		"cutoff": cutoff,
	}), "contact retention sweep complete")
	return nil
}
