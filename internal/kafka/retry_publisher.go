package kafka

import "context"

// RetryPublisher wraps a Producer with a fixed retry budget so callers can
// publish without carrying the retry count around.
type RetryPublisher struct {
	producer   *Producer
	maxRetries int
}

func NewRetryPublisher(producer *Producer, maxRetries int) *RetryPublisher {
	return &RetryPublisher{producer: producer, maxRetries: maxRetries}
}

func (r *RetryPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	return r.producer.PublishWithRetry(ctx, topic, key, payload, r.maxRetries)
}
