package audit

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/linkgate/internal/messaging"
	"go.uber.org/zap"
)

// Recorder publishes audit events. Publish failures are logged and never
// returned; auditing must not fail the request that triggered it.
type Recorder struct {
	credentials messaging.Publish[CredentialsUpdated]
	auth        messaging.Publish[AuthAttempted]
	limited     messaging.Publish[RateLimited]
	links       messaging.Publish[LinkIssued]
	logger      *zap.Logger
	now         func() time.Time
}

// NewRecorder creates a recorder publishing through publisher.
func NewRecorder(publisher message.Publisher, logger *zap.Logger) *Recorder {
	return &Recorder{
		credentials: messaging.NewPublishFunc[CredentialsUpdated](publisher, TopicCredentialsUpdated),
		auth:        messaging.NewPublishFunc[AuthAttempted](publisher, TopicAuthAttempted),
		limited:     messaging.NewPublishFunc[RateLimited](publisher, TopicRateLimited),
		links:       messaging.NewPublishFunc[LinkIssued](publisher, TopicLinkIssued),
		logger:      logger,
		now:         time.Now,
	}
}

func (r *Recorder) CredentialsUpdated(ctx context.Context, hasPassword, hasFingerprint bool, clientIP string) {
	r.check(TopicCredentialsUpdated, r.credentials(ctx, &CredentialsUpdated{
		Header:         newHeader(r.now()),
		HasPassword:    hasPassword,
		HasFingerprint: hasFingerprint,
		ClientIP:       clientIP,
	}))
}

func (r *Recorder) AuthAttempted(ctx context.Context, method string, success bool, clientIP string) {
	r.check(TopicAuthAttempted, r.auth(ctx, &AuthAttempted{
		Header:   newHeader(r.now()),
		Method:   method,
		Success:  success,
		ClientIP: clientIP,
	}))
}

func (r *Recorder) RateLimited(ctx context.Context, action, clientIP string) {
	r.check(TopicRateLimited, r.limited(ctx, &RateLimited{
		Header:   newHeader(r.now()),
		Action:   action,
		ClientIP: clientIP,
	}))
}

func (r *Recorder) LinkIssued(ctx context.Context, key string, custom, deduplicated bool) {
	r.check(TopicLinkIssued, r.links(ctx, &LinkIssued{
		Header:       newHeader(r.now()),
		Key:          key,
		Custom:       custom,
		Deduplicated: deduplicated,
	}))
}

func (r *Recorder) check(topic string, err error) {
	if err != nil {
		r.logger.Error("failed to publish audit event", zap.String("topic", topic), zap.Error(err))
	}
}
