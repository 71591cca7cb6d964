package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"pgy3-backend/application/ports"
)

const (
	// Source identifies this service on the event bus.
	Source = "pgy3.mindmap"
	// DetailType is the detail-type of every save event.
	DetailType = "MindMapSaved"
)

// API is the subset of the EventBridge client used here.
type API interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Notifier publishes a MindMapSaved event after every save.
type Notifier struct {
	client       API
	eventBusName string
	logger       *zap.Logger
}

func NewNotifier(client API, eventBusName string, logger *zap.Logger) *Notifier {
	return &Notifier{client: client, eventBusName: eventBusName, logger: logger}
}

func (n *Notifier) DocumentSaved(ctx context.Context, event ports.DocumentSaved) error {
	detail, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	result, err := n.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			EventBusName: aws.String(n.eventBusName),
			Source:       aws.String(Source),
			DetailType:   aws.String(DetailType),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.SavedAt),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to publish events to EventBridge: %w", err)
	}

	if result.FailedEntryCount > 0 {
		for _, entry := range result.Entries {
			if entry.ErrorCode != nil {
				return fmt.Errorf("event rejected: %s: %s", *entry.ErrorCode, aws.ToString(entry.ErrorMessage))
			}
		}
		return fmt.Errorf("%d events failed to publish", result.FailedEntryCount)
	}

	n.logger.Debug("Event published to EventBridge",
		zap.String("reason", event.Reason),
		zap.String("eventBus", n.eventBusName),
	)
	return nil
}
