package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"author-be/internal/entity"
	"author-be/internal/pkg/logger"
	"author-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRooms struct {
	mu     sync.Mutex
	frames map[int64][][]byte
}

func (f *fakeRooms) SendToRepository(repositoryId int64, frame []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frames == nil {
		f.frames = make(map[int64][][]byte)
	}
	f.frames[repositoryId] = append(f.frames[repositoryId], frame)
}

func (f *fakeRooms) received(repositoryId int64) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.frames[repositoryId]...)
}

func TestConsumerService_DeliversBroadcasts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	rooms := &fakeRooms{}
	forwarded := &fakeEvents{}
	consumer := NewConsumerService(pubSub, "REPOSITORY_EVENTS", rooms, forwarded, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("REPOSITORY_EVENTS", pubSub)
	activity := &entity.Activity{Id: 7, RepositoryId: 3, Type: "PAGE"}
	require.NoError(t, publisher.Broadcast(ctx, 3, EventActivityUpdate, activity))

	require.Eventually(t, func() bool {
		return len(rooms.received(3)) == 1
	}, time.Second, 10*time.Millisecond)

	var frame struct {
		Type string `json:"type"`
		Data struct {
			Id   int64  `json:"Id"`
			Type string `json:"Type"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rooms.received(3)[0], &frame))
	assert.Equal(t, EventActivityUpdate, frame.Type)
	assert.Equal(t, int64(7), frame.Data.Id)
	assert.Equal(t, "PAGE", frame.Data.Type)

	require.Eventually(t, func() bool {
		return len(forwarded.types()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{events.ActivityUpdated}, forwarded.types())
	assert.Empty(t, rooms.received(4))
}

func TestConsumerService_AcksBadPayload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	rooms := &fakeRooms{}
	consumer := NewConsumerService(pubSub, "REPOSITORY_EVENTS", rooms, nil, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	require.NoError(t, pubSub.Publish("REPOSITORY_EVENTS", message.NewMessage(watermill.NewUUID(), []byte("not json"))))

	publisher := NewPublisherService("REPOSITORY_EVENTS", pubSub)
	require.NoError(t, publisher.Broadcast(ctx, 1, EventElementDelete, map[string]interface{}{"Id": 1}))

	require.Eventually(t, func() bool {
		return len(rooms.received(1)) == 1
	}, time.Second, 10*time.Millisecond)
}
