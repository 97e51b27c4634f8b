// Package ingest applies externally published position snapshots to the
// vehicle store. It is write-path glue: the analytics engine itself never
// mutates anything.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// PositionStore is the slice of the vehicle store the subscriber needs.
type PositionStore interface {
	UpdateVehiclePosition(ctx context.Context, id string, lat, lon float64) error
}

// PositionMessage is one position snapshot published for a vehicle.
type PositionMessage struct {
	VehicleID string  `json:"vehicle_id"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
}

// Subscriber consumes position snapshots from an MQTT topic and overwrites
// the vehicle's stored coordinates. Malformed payloads are logged and
// dropped; one bad message never stops the feed.
type Subscriber struct {
	client mqtt.Client
	store  PositionStore
	topic  string
}

// NewSubscriber builds a subscriber for the given broker and topic.
func NewSubscriber(brokerURL, clientID, topic string, store PositionStore) *Subscriber {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)
	return &Subscriber{
		client: mqtt.NewClient(opts),
		store:  store,
		topic:  topic,
	}
}

// Start connects and subscribes. It returns once the subscription is
// established; message handling runs on the client's goroutines.
func (s *Subscriber) Start() error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	if token := s.client.Subscribe(s.topic, 1, s.Handle); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", s.topic, token.Error())
	}
	log.WithField("topic", s.topic).Info("Position subscriber started")
	return nil
}

// Stop disconnects from the broker.
func (s *Subscriber) Stop() {
	s.client.Disconnect(250)
}

// Handle applies one position message to the store.
func (s *Subscriber) Handle(_ mqtt.Client, msg mqtt.Message) {
	var pos PositionMessage
	if err := json.Unmarshal(msg.Payload(), &pos); err != nil {
		log.WithError(err).WithField("topic", msg.Topic()).Warn("Dropping malformed position message")
		return
	}
	if err := validate(pos); err != nil {
		log.WithError(err).WithField("vehicle_id", pos.VehicleID).Warn("Dropping invalid position message")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.UpdateVehiclePosition(ctx, pos.VehicleID, pos.Lat, pos.Lon); err != nil {
		log.WithError(err).WithField("vehicle_id", pos.VehicleID).Error("Failed to update vehicle position")
		return
	}
	log.WithFields(log.Fields{
		"vehicle_id": pos.VehicleID,
		"lat":        pos.Lat,
		"lon":        pos.Lon,
	}).Debug("Updated vehicle position")
}

func validate(pos PositionMessage) error {
	if pos.VehicleID == "" {
		return fmt.Errorf("missing vehicle_id")
	}
	if pos.Lat < -90 || pos.Lat > 90 {
		return fmt.Errorf("latitude %f out of range", pos.Lat)
	}
	if pos.Lon < -180 || pos.Lon > 180 {
		return fmt.Errorf("longitude %f out of range", pos.Lon)
	}
	return nil
}
