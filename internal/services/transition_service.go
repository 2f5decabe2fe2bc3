package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/samber/lo"

	"github.com/fsnav/fsnav/internal/api"
	"github.com/fsnav/fsnav/internal/events"
	"github.com/fsnav/fsnav/internal/logging"
	"github.com/fsnav/fsnav/internal/models"
	"github.com/fsnav/fsnav/internal/navigator"
	"github.com/fsnav/fsnav/internal/util/storageclass"
	"github.com/fsnav/fsnav/internal/validation"
)

var (
	ErrNoTransitionTargets  = errors.New("no selected file has a storage class")
	ErrInvalidArchiveDays   = errors.New("transition days must be a non-negative number")
	ErrInvalidRestoreDays   = errors.New("restore days must be a positive number")
	ErrUnknownTransitionAct = errors.New("action must be archive or restore")
)

// TransitionService submits S3 archive and restore requests.
type TransitionService struct {
	apiClient *api.Client
	eventBus  *events.EventBus
	logger    *logging.Logger
}

// NewTransitionService creates a new TransitionService.
func NewTransitionService(apiClient *api.Client, eventBus *events.EventBus, logger *logging.Logger) *TransitionService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TransitionService{
		apiClient: apiClient,
		eventBus:  eventBus,
		logger:    logger.Named("transition-service"),
	}
}

// BuildPayload validates opts and converts them to the request payload.
func BuildPayload(opts TransitionOptions) (models.TransitionPayload, error) {
	switch opts.Action {
	case models.TransitionArchive:
		class, err := storageclass.ParseStorageClass(opts.StorageClass)
		if err != nil {
			return models.TransitionPayload{}, err
		}
		payload := models.TransitionPayload{Action: models.TransitionArchive, StorageClass: class}
		if opts.Days != nil {
			if *opts.Days < 0 {
				return models.TransitionPayload{}, ErrInvalidArchiveDays
			}
			payload.Days = aws.Int32(int32(*opts.Days))
		}
		return payload, nil

	case models.TransitionRestore:
		days := storageclass.DefaultRestoreDays
		if opts.Days != nil {
			days = *opts.Days
		}
		if days <= 0 {
			return models.TransitionPayload{}, ErrInvalidRestoreDays
		}
		tier, err := storageclass.ParseTier(opts.Tier)
		if err != nil {
			return models.TransitionPayload{}, err
		}
		return models.TransitionPayload{
			Action: models.TransitionRestore,
			Days:   aws.Int32(int32(days)),
			Tier:   tier,
		}, nil

	default:
		return models.TransitionPayload{}, fmt.Errorf("%w: %q", ErrUnknownTransitionAct, opts.Action)
	}
}

// ResolveTargetPath returns the server path of entry shown in currentDir.
// An entry path that is absolute already, or a suffix of the computed path,
// is honored; otherwise the entry name is joined onto currentDir.
func ResolveTargetPath(currentDir string, entry models.Entry) string {
	computed := path.Join("/", currentDir, entry.Name)
	if entry.Path == "" {
		return computed
	}
	target := path.Join("/", entry.Path)
	if target == computed || strings.HasSuffix(computed, target) {
		return computed
	}
	return target
}

// SplitTargets separates transitionable files from the rest.
func SplitTargets(entries []models.Entry) (targets, skipped []models.Entry) {
	return lo.FilterReject(entries, func(e models.Entry, _ int) bool {
		return storageclass.Transitionable(e)
	})
}

// Submit sends one transition request per transitionable entry of
// currentDir, in order, stopping at the first failure. The report lists
// what was accepted before the failure.
func (ts *TransitionService) Submit(ctx context.Context, currentDir string, entries []models.Entry, opts TransitionOptions) (*TransitionReport, error) {
	if ts.apiClient == nil {
		return nil, fmt.Errorf("API client not configured")
	}

	payload, err := BuildPayload(opts)
	if err != nil {
		return nil, err
	}

	targets, skipped := SplitTargets(entries)
	report := &TransitionReport{
		Action:  opts.Action,
		Skipped: lo.Map(skipped, func(e models.Entry, _ int) string { return e.Name }),
	}
	if len(targets) == 0 {
		return report, ErrNoTransitionTargets
	}

	// Names come from the server; refuse the batch before sending anything
	// if one of them would leave currentDir.
	for _, target := range targets {
		if target.Path != "" {
			continue
		}
		if err := validation.EntryName(target.Name); err != nil {
			report.FailedPath = path.Join("/", currentDir, target.Name)
			return report, err
		}
	}

	for _, target := range targets {
		p := ResolveTargetPath(currentDir, target)
		result, err := ts.apiClient.S3Transition(ctx, models.TransitionRequest{
			Path:     p,
			Payload:  payload,
			Password: opts.Password,
		})
		if err != nil {
			report.FailedPath = p
			ts.logger.Error().Err(err).Str("path", p).Str("action", string(opts.Action)).Msg("Transition failed")
			return report, fmt.Errorf("%s %s: %w", opts.Action, p, err)
		}
		report.Submitted = append(report.Submitted, p)
		if result != nil && result.TaskID != "" {
			report.TaskIDs = append(report.TaskIDs, result.TaskID)
		}
	}

	ts.logger.Info().
		Str("action", string(opts.Action)).
		Int("submitted", len(report.Submitted)).
		Strs("tasks", report.TaskIDs).
		Msg("Transitions submitted")

	if ts.eventBus != nil {
		ts.eventBus.Publish(&TransitionSubmittedEvent{
			BaseEvent: events.NewBase(EventTransitionSubmitted),
			Report:    *report,
		})
	}
	return report, nil
}

// SubmitSelection transitions the entries selected in the navigator's
// listing, then clears the selection and refreshes the directory so the
// new storage classes show up.
func (ts *TransitionService) SubmitSelection(ctx context.Context, nav *navigator.Navigator, opts TransitionOptions) (*TransitionReport, error) {
	listing := nav.Listing()
	selected := listing.SelectedEntries()
	if len(selected) == 0 {
		return nil, ErrNoTransitionTargets
	}

	report, err := ts.Submit(ctx, nav.CurrentPath(), selected, opts)
	if err != nil {
		return report, err
	}

	listing.ClearSelection()
	nav.Refresh(ctx, navigator.RefreshOptions{})
	return report, nil
}
