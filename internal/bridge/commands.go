package bridge

import (
	"fmt"
	"strconv"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/mklemme/fhs280-bridge/internal/poll"
	"github.com/mklemme/fhs280-bridge/internal/registers"
)

func (b *Bridge) subscribeCommands(client mqtt.Client) {
	for _, n := range numbers {
		n := n
		def, ok := registers.ByKey(n.key)
		if !ok {
			continue
		}
		client.Subscribe(b.commandTopic(n.key), 0, func(_ mqtt.Client, msg mqtt.Message) {
			value, err := parseNumber(string(msg.Payload()), n.min, n.max)
			if err != nil {
				log.WithField("key", n.key).WithError(err).Warn("rejected number command")
				return
			}
			b.write(n.key, def.Address, value, map[string]interface{}{n.key: value})
		}).Wait()
	}

	for _, s := range selects {
		s := s
		source := registers.EnumSources[s.attr]
		def, ok := registers.ByKey(source)
		if !ok {
			continue
		}
		client.Subscribe(b.commandTopic(s.attr), 0, func(_ mqtt.Client, msg mqtt.Message) {
			label := string(msg.Payload())
			code, ok := registers.Code(s.attr, label)
			if !ok {
				log.WithFields(log.Fields{"key": s.attr, "payload": label}).Warn("rejected unknown option")
				return
			}
			b.write(s.attr, def.Address, code, map[string]interface{}{
				source: code,
				s.attr: label,
			})
		}).Wait()
	}

	for _, s := range switches {
		s := s
		source := registers.EnumSources[s.attr]
		def, ok := registers.ByKey(source)
		if !ok {
			continue
		}
		client.Subscribe(b.commandTopic(s.attr), 0, func(_ mqtt.Client, msg mqtt.Message) {
			code, err := parseOnOff(string(msg.Payload()))
			if err != nil {
				log.WithField("key", s.attr).WithError(err).Warn("rejected switch command")
				return
			}
			b.write(s.attr, def.Address, code, map[string]interface{}{
				source: code,
				s.attr: registers.Label(s.attr, code),
			})
		}).Wait()
	}

	for _, te := range times {
		te := te
		hourDef, okH := registers.ByKey(te.hourKey)
		minuteDef, okM := registers.ByKey(te.minuteKey)
		if !okH || !okM {
			continue
		}
		client.Subscribe(b.commandTopic(te.key), 0, func(_ mqtt.Client, msg mqtt.Message) {
			hour, minute, err := parseTime(string(msg.Payload()))
			if err != nil {
				log.WithField("key", te.key).WithError(err).Warn("rejected time command")
				return
			}
			b.write(te.key, hourDef.Address, hour, nil)
			b.write(te.key, minuteDef.Address, minute, map[string]interface{}{
				te.hourKey:   hour,
				te.minuteKey: minute,
			})
		}).Wait()
	}

	client.Subscribe(b.topic("refresh"), 0, func(_ mqtt.Client, _ mqtt.Message) {
		b.coord.Refresh()
	}).Wait()
}

// write performs one register write through the coordinator and surfaces
// the device-reported cause when it is rejected.
func (b *Bridge) write(key string, addr uint16, value int, patch map[string]interface{}) {
	if err := b.coord.Write(addr, value, patch); err != nil {
		log.WithFields(log.Fields{
			"key":     key,
			"address": addr,
			"value":   value,
		}).WithError(err).Error("register write rejected")
	}
}

func parseNumber(payload string, min, max int) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", payload)
	}
	value := int(v + 0.5)
	if value < min || value > max {
		return 0, fmt.Errorf("value %d outside %d..%d", value, min, max)
	}
	return value, nil
}

func parseOnOff(payload string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(payload)) {
	case "an", "on", "1":
		return 1, nil
	case "aus", "off", "0":
		return 0, nil
	}
	return 0, fmt.Errorf("not an on/off payload: %q", payload)
}

func parseTime(payload string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(payload), ":")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("not a HH:MM payload: %q", payload)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", payload)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", payload)
	}
	return hour, minute, nil
}

// formatValue renders a snapshot value as an MQTT payload.
func formatValue(v interface{}) string {
	switch value := v.(type) {
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case string:
		return value
	}
	return fmt.Sprint(v)
}

// timeState renders an HH:MM pair from the snapshot, or "unavailable"
// when either half failed to read.
func timeState(snap *poll.Snapshot, te timeEntity) string {
	hour, okH := snap.Int(te.hourKey)
	minute, okM := snap.Int(te.minuteKey)
	if !okH || !okM || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return unavailable
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
