/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Broker selects the publish/subscribe implementation behind a pubsub source.
type Broker string

const (
	BrokerMQTT Broker = "mqtt"
	BrokerNATS Broker = "nats"
)

const (
	defaultMQTTPort       = 1883
	defaultMQTTTLSPort    = 8883
	defaultNATSPort       = 4222
	defaultKeepAlive      = 60 * time.Second
	defaultConnectTimeout = 10 * time.Second
	defaultRetryDelay     = 5 * time.Second
	defaultMaxRetryDelay  = 60 * time.Second
	defaultMaxRetries     = 10
)

// PubSubConfig describes a broker connection.
type PubSubConfig struct {
	Broker         Broker   `json:"broker,omitempty"`
	URL            string   `json:"url,omitempty"`
	Hostname       string   `json:"hostname,omitempty"`
	Port           int      `json:"port,omitempty"`
	Username       string   `json:"username,omitempty"`
	Password       string   `json:"password,omitempty"`
	ClientID       string   `json:"client_id,omitempty"`
	Topics         []string `json:"topics,omitempty"`
	QoS            byte     `json:"default_qos,omitempty"`
	KeepAlive      Seconds  `json:"keep_alive,omitempty"`
	CleanSession   *bool    `json:"clean_session,omitempty"`
	UseTLS         bool     `json:"use_tls,omitempty"`
	TLSInsecure    bool     `json:"tls_insecure,omitempty"`
	ConnectTimeout Seconds  `json:"connection_timeout,omitempty"`
	MaxRetries     int      `json:"max_retries,omitempty"`
	RetryDelay     Seconds  `json:"retry_delay,omitempty"`
}

// SocketConfig describes a full-duplex socket endpoint.
type SocketConfig struct {
	URL              string            `json:"url"`
	Headers          map[string]string `json:"headers,omitempty"`
	Subprotocols     []string          `json:"subprotocols,omitempty"`
	SubscribeFrames  bool              `json:"subscribe_frames,omitempty"`
	HandshakeTimeout Seconds           `json:"handshake_timeout,omitempty"`
	MaxRetries       int               `json:"max_retries,omitempty"`
	RetryDelay       Seconds           `json:"retry_delay,omitempty"`
	MaxRetryDelay    Seconds           `json:"max_retry_delay,omitempty"`
}

// HTTPSourceConfig describes a polled HTTP endpoint. Binding level
// HTTPConfig values override these.
type HTTPSourceConfig struct {
	URL          string            `json:"url"`
	Method       string            `json:"method,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	PollInterval Seconds           `json:"pollInterval,omitempty"`
	Timeout      Seconds           `json:"timeout,omitempty"`
	MaxRetries   int               `json:"max_retries,omitempty"`
}

// SourceConfig is one physical connection definition referenced by bindings through SourceID.
type SourceConfig struct {
	ID       string            `json:"id"`
	Name     string            `json:"name,omitempty"`
	Protocol Protocol          `json:"protocol"`
	PubSub   *PubSubConfig     `json:"pubsub,omitempty"`
	Socket   *SocketConfig     `json:"socket,omitempty"`
	HTTP     *HTTPSourceConfig `json:"http,omitempty"`
}

// Validate checks that the sub-config matching the protocol is present and
// fills in defaults.
func (s *SourceConfig) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: source id", ErrMissingSourceID)
	}

	switch s.Protocol {
	case ProtocolPubSub:
		if s.PubSub == nil || (s.PubSub.URL == "" && s.PubSub.Hostname == "") {
			return fmt.Errorf("%w: %s", ErrMissingSourceTopic, s.ID)
		}

		s.PubSub.applyDefaults()
	case ProtocolSocket:
		if s.Socket == nil || s.Socket.URL == "" {
			return fmt.Errorf("%w: %s", ErrMissingSourceTopic, s.ID)
		}

		s.Socket.applyDefaults()
	case ProtocolHTTP:
		if s.HTTP == nil || s.HTTP.URL == "" {
			return fmt.Errorf("%w: %s", ErrMissingSourceTopic, s.ID)
		}

		s.HTTP.applyDefaults()
	default:
		return fmt.Errorf("%w: %q", ErrInvalidProtocol, s.Protocol)
	}

	return nil
}

// Topics returns the explicitly configured topics of a pubsub source.
func (s *SourceConfig) Topics() []string {
	if s.PubSub == nil {
		return nil
	}

	return s.PubSub.Topics
}

func (c *PubSubConfig) applyDefaults() {
	if c.Broker == "" {
		c.Broker = BrokerMQTT
	}

	if c.KeepAlive <= 0 {
		c.KeepAlive = Seconds(defaultKeepAlive)
	}

	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = Seconds(defaultConnectTimeout)
	}

	if c.RetryDelay <= 0 {
		c.RetryDelay = Seconds(defaultRetryDelay)
	}

	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
}

// Address returns host:port, applying the broker's default port.
func (c *PubSubConfig) Address() string {
	port := c.Port
	if port == 0 {
		switch {
		case c.Broker == BrokerNATS:
			port = defaultNATSPort
		case c.UseTLS:
			port = defaultMQTTTLSPort
		default:
			port = defaultMQTTPort
		}
	}

	return net.JoinHostPort(c.Hostname, strconv.Itoa(port))
}

// BrokerURL returns the configured URL or builds one from hostname and port.
func (c *PubSubConfig) BrokerURL() string {
	if c.URL != "" {
		return c.URL
	}

	scheme := "tcp"

	switch {
	case c.Broker == BrokerNATS && c.UseTLS:
		scheme = "tls"
	case c.Broker == BrokerNATS:
		scheme = "nats"
	case c.UseTLS:
		scheme = "ssl"
	}

	return scheme + "://" + c.Address()
}

// ConnectionKey identifies the physical broker session (host:port:username).
func (c *PubSubConfig) ConnectionKey() string {
	return c.Address() + ":" + c.Username
}

func (c *SocketConfig) applyDefaults() {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = Seconds(defaultConnectTimeout)
	}

	if c.RetryDelay <= 0 {
		c.RetryDelay = Seconds(defaultRetryDelay)
	}

	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = Seconds(defaultMaxRetryDelay)
	}

	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
}

func (c *HTTPSourceConfig) applyDefaults() {
	if c.Method == "" {
		c.Method = defaultHTTPMethod
	}

	if c.Timeout <= 0 {
		c.Timeout = Seconds(defaultHTTPTimeout)
	}

	if c.MaxRetries <= 0 {
		c.MaxRetries = 1
	}
}
