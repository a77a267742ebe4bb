// Package bridge publishes decoded snapshots to MQTT with Home Assistant
// discovery and maps command topics back to register writes.
package bridge

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/mklemme/fhs280-bridge/internal/coordinator"
	"github.com/mklemme/fhs280-bridge/internal/poll"
	"github.com/mklemme/fhs280-bridge/internal/registers"
)

const unavailable = "unavailable"

type Config struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	Username    string
	Password    string
}

// Bridge is the platform-facing presentation layer. All device access
// goes through the coordinator so optimistic patches and polls share one
// snapshot.
type Bridge struct {
	cfg    Config
	client mqtt.Client
	coord  *coordinator.Coordinator
}

func New(cfg Config, coord *coordinator.Coordinator) *Bridge {
	return &Bridge{cfg: cfg, coord: coord}
}

// Connect establishes the MQTT session, announces the entities and
// subscribes the command topics. Discovery and subscriptions are redone
// on every reconnect.
func (b *Bridge) Connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(b.cfg.Broker).
		SetClientID(b.cfg.ClientID).
		SetWill(b.topic("status"), "offline", 0, true).
		SetAutoReconnect(true).
		SetResumeSubs(true)

	if b.cfg.Username != "" {
		opts.SetUsername(b.cfg.Username)
		opts.SetPassword(b.cfg.Password)
	}

	opts.OnConnect = func(client mqtt.Client) {
		log.Info("MQTT connected")
		b.publishDiscovery(client)
		b.subscribeCommands(client)
		client.Publish(b.topic("status"), 0, true, "online").Wait()
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("MQTT connection lost")
	}

	b.client = mqtt.NewClient(opts)
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return nil
}

// Close announces offline and disconnects.
func (b *Bridge) Close() {
	if b.client == nil {
		return
	}
	b.client.Publish(b.topic("status"), 0, true, "offline").Wait()
	b.client.Disconnect(250)
}

// OnPoll is the coordinator listener. A failed cycle marks the device
// offline; a successful one publishes every known key and an explicit
// "unavailable" for keys missing from this round's snapshot.
func (b *Bridge) OnPoll(snap *poll.Snapshot, err error) {
	if b.client == nil || !b.client.IsConnected() {
		return
	}

	if err != nil {
		b.client.Publish(b.topic("status"), 0, true, "offline")
		return
	}

	b.client.Publish(b.topic("status"), 0, true, "online")

	for _, key := range stateKeys() {
		payload := unavailable
		if v, ok := snap.Values[key]; ok {
			payload = formatValue(v)
		}
		b.client.Publish(b.stateTopic(key), 0, true, payload)
	}

	for _, te := range times {
		b.client.Publish(b.stateTopic(te.key), 0, true, timeState(snap, te))
	}
}

func (b *Bridge) topic(suffix string) string {
	return b.cfg.TopicPrefix + "/" + suffix
}

func (b *Bridge) stateTopic(key string) string {
	return b.topic("state/" + key)
}

func (b *Bridge) commandTopic(key string) string {
	return b.topic("set/" + key)
}

// stateKeys lists every snapshot key the bridge publishes directly.
func stateKeys() []string {
	var keys []string
	for _, s := range sensors {
		keys = append(keys, s.key)
	}
	for _, n := range numbers {
		keys = append(keys, n.key)
	}
	for _, s := range selects {
		keys = append(keys, s.attr)
	}
	for _, s := range switches {
		keys = append(keys, s.attr)
	}
	return keys
}

// discoveryPayload is the Home Assistant MQTT discovery config.
type discoveryPayload struct {
	Name              string          `json:"name"`
	StateTopic        string          `json:"stat_t"`
	CommandTopic      string          `json:"cmd_t,omitempty"`
	AvailabilityTopic string          `json:"avty_t"`
	UniqueID          string          `json:"uniq_id"`
	DeviceClass       string          `json:"dev_cla,omitempty"`
	UnitOfMeasurement string          `json:"unit_of_meas,omitempty"`
	Min               *int            `json:"min,omitempty"`
	Max               *int            `json:"max,omitempty"`
	Options           []string        `json:"options,omitempty"`
	PayloadOn         string          `json:"pl_on,omitempty"`
	PayloadOff        string          `json:"pl_off,omitempty"`
	Pattern           string          `json:"pattern,omitempty"`
	Device            discoveryDevice `json:"dev"`
}

type discoveryDevice struct {
	IDs          string `json:"ids"`
	Name         string `json:"name"`
	Manufacturer string `json:"mf"`
	Model        string `json:"mdl"`
}

func intPtr(v int) *int { return &v }

func (b *Bridge) device() discoveryDevice {
	return discoveryDevice{
		IDs:          b.cfg.ClientID,
		Name:         "Wolf FHS280",
		Manufacturer: "WOLF",
		Model:        "FHS 280",
	}
}

func (b *Bridge) announce(client mqtt.Client, component, key string, payload discoveryPayload) {
	payload.AvailabilityTopic = b.topic("status")
	payload.UniqueID = b.cfg.ClientID + "_" + key
	payload.Device = b.device()

	raw, err := json.Marshal(&payload)
	if err != nil {
		log.WithError(err).WithField("key", key).Error("discovery payload marshal failed")
		return
	}

	topic := fmt.Sprintf("homeassistant/%s/%s/%s/config", component, b.cfg.ClientID, key)
	client.Publish(topic, 0, true, string(raw)).Wait()
}

func (b *Bridge) publishDiscovery(client mqtt.Client) {
	for _, s := range sensors {
		b.announce(client, "sensor", s.key, discoveryPayload{
			Name:              s.name,
			StateTopic:        b.stateTopic(s.key),
			DeviceClass:       s.deviceClass,
			UnitOfMeasurement: s.unit,
		})
	}

	for _, n := range numbers {
		b.announce(client, "number", n.key, discoveryPayload{
			Name:              n.name,
			StateTopic:        b.stateTopic(n.key),
			CommandTopic:      b.commandTopic(n.key),
			UnitOfMeasurement: n.unit,
			Min:               intPtr(n.min),
			Max:               intPtr(n.max),
		})
	}

	for _, s := range selects {
		b.announce(client, "select", s.attr, discoveryPayload{
			Name:         s.name,
			StateTopic:   b.stateTopic(s.attr),
			CommandTopic: b.commandTopic(s.attr),
			Options:      optionLabels(s.attr),
		})
	}

	for _, s := range switches {
		b.announce(client, "switch", s.attr, discoveryPayload{
			Name:         s.name,
			StateTopic:   b.stateTopic(s.attr),
			CommandTopic: b.commandTopic(s.attr),
			PayloadOn:    "An",
			PayloadOff:   "Aus",
		})
	}

	for _, te := range times {
		b.announce(client, "text", te.key, discoveryPayload{
			Name:         te.name,
			StateTopic:   b.stateTopic(te.key),
			CommandTopic: b.commandTopic(te.key),
			Pattern:      `^([01]?\d|2[0-3]):[0-5]\d$`,
		})
	}
}

// optionLabels returns the select options in code order so the UI order
// matches the device menu.
func optionLabels(attr string) []string {
	mapping := registers.EnumMappings[attr]
	labels := make([]string, 0, len(mapping))
	for code := 0; ; code++ {
		label, ok := mapping[code]
		if !ok {
			break
		}
		labels = append(labels, label)
	}
	return labels
}
