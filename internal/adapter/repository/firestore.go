package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mindhaven/internal/domain/repository"
	"mindhaven/pkg/logger"
	"mindhaven/pkg/metrics"
)

const (
	usersCollection         = "users"
	bookingsCollection      = "bookings"
	chatsCollection         = "chats"
	messagesCollection      = "messages"
	aiChatsCollection       = "aiChats"
	quotesCollection        = "quotes"
	notificationsCollection = "notifications"
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func decodeAll[T any](iter *firestore.DocumentIterator) ([]*T, error) {
	defer iter.Stop()

	var items []*T
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var item T
		if err := doc.DataTo(&item); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, nil
}

func decodeSnapshots[T any](docs []*firestore.DocumentSnapshot) ([]*T, error) {
	items := make([]*T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := doc.DataTo(&item); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, nil
}

func countQuery(ctx context.Context, q firestore.Query) (int64, error) {
	result, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}

	count, ok := result["all"]
	if !ok {
		return 0, nil
	}
	switch v := count.(type) {
	case interface{ GetIntegerValue() int64 }:
		return v.GetIntegerValue(), nil
	case int64:
		return v, nil
	}
	return 0, nil
}

// watchQuery runs a snapshot listener for q on its own goroutine. Every
// snapshot is decoded and handed to onChange in query order. The listener ends
// when the returned Unsubscribe is called, ctx is done, or a non-cancellation
// error is reported to onError.
func watchQuery[T any](ctx context.Context, q firestore.Query, topic string, onChange func([]*T), onError func(error)) repository.Unsubscribe {
	ctx, cancel := context.WithCancel(ctx)
	snapshots := q.Snapshots(ctx)

	gauge := metrics.LiveSubscriptions.WithLabelValues(topic)
	gauge.Inc()
	log := logger.With("topic", topic)

	go func() {
		defer gauge.Dec()
		defer snapshots.Stop()

		for {
			snap, err := snapshots.Next()
			if err != nil {
				if ctx.Err() != nil || err == iterator.Done || status.Code(err) == codes.Canceled {
					return
				}
				log.Warnw("Live subscription failed", "error", err)
				onError(err)
				return
			}

			docs, err := snap.Documents.GetAll()
			if err == nil {
				var items []*T
				items, err = decodeSnapshots[T](docs)
				if err == nil && ctx.Err() == nil {
					onChange(items)
					continue
				}
			}
			if ctx.Err() != nil {
				return
			}
			log.Warnw("Live subscription snapshot unreadable", "error", err)
			onError(err)
			return
		}
	}()

	return repository.Once(cancel)
}
