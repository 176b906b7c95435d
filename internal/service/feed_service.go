package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/observability"
)

const feedBufferSize = 16

// FeedService fans recorded activity out to live per-room subscribers.
// Locally connected clients get events through an in-process broker; redis
// pub/sub and a NATS queue subscription carry events across nodes.
type FeedService interface {
	FeedPublisher
	Subscribe(dataRoomID uint) (<-chan dto.ActivityResponse, func())
	Start(ctx context.Context)
}

type feedService struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	broker       *feedBroker
	nodeID       string
}

type feedEvent struct {
	Source string               `json:"source"`
	Entry  dto.ActivityResponse `json:"entry"`
	SentAt time.Time            `json:"sent_at"`
}

type feedBroker struct {
	mu          sync.RWMutex
	subscribers map[uint]map[chan dto.ActivityResponse]struct{}
}

// NewFeedService constructs the feed service. redisClient and natsConn may
// be nil; the feed then serves local subscribers only.
func NewFeedService(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) FeedService {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":feed"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".feed"
	}

	return &feedService{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "feed_service").Logger(),
		broker: &feedBroker{
			subscribers: make(map[uint]map[chan dto.ActivityResponse]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *feedService) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *feedService) PublishActivity(ctx context.Context, entry dto.ActivityResponse) {
	s.broker.broadcast(entry.DataRoomID, entry)

	event := feedEvent{Source: s.nodeID, Entry: entry, SentAt: time.Now().UTC()}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode feed event")
		return
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish feed event to redis")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish feed event to nats")
		}
	}
}

func (s *feedService) Subscribe(dataRoomID uint) (<-chan dto.ActivityResponse, func()) {
	channel := make(chan dto.ActivityResponse, feedBufferSize)

	s.broker.subscribe(dataRoomID, channel)
	observability.FeedClientsActive().Inc()

	cleanup := func() {
		s.broker.unsubscribe(dataRoomID, channel)
		observability.FeedClientsActive().Dec()
	}

	return channel, cleanup
}

func (s *feedService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("feed redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *feedService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "oppspot-feed", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats feed subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain feed nats subscription")
		}
	}()
}

func (s *feedService) handleEvent(payload []byte) {
	var event feedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid feed event payload")
		return
	}

	// Events published from this node already reached local subscribers.
	if event.Source == s.nodeID {
		return
	}

	s.broker.broadcast(event.Entry.DataRoomID, event.Entry)
}

func (b *feedBroker) subscribe(dataRoomID uint, channel chan dto.ActivityResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers[dataRoomID] == nil {
		b.subscribers[dataRoomID] = make(map[chan dto.ActivityResponse]struct{})
	}
	b.subscribers[dataRoomID][channel] = struct{}{}
}

func (b *feedBroker) unsubscribe(dataRoomID uint, channel chan dto.ActivityResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, ok := b.subscribers[dataRoomID]; ok {
		delete(subs, channel)
		if len(subs) == 0 {
			delete(b.subscribers, dataRoomID)
		}
	}
	close(channel)
}

func (b *feedBroker) broadcast(dataRoomID uint, entry dto.ActivityResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for channel := range b.subscribers[dataRoomID] {
		select {
		case channel <- entry:
		default:
			// Slow subscriber; drop rather than block the publisher.
		}
	}
}

// FeedChannelBase builds the channel/subject base for an environment.
func FeedChannelBase(env string) string {
	if env == "" {
		return "oppspot"
	}
	return fmt.Sprintf("oppspot:%s", env)
}
