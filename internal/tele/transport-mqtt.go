package tele

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"io/ioutil"
	"net/url"
	"strings"
	"time"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/helpers"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"
)

const DefaultNetworkTimeout = 30 * time.Second

type transportMqtt struct {
	log       *log2.Log
	onMessage MessageCallback
	m         mqtt.Client
	mopt      *mqtt.ClientOptions
	stopCh    chan struct{}
	// tests replace client constructor
	newClient func(*mqtt.ClientOptions) mqtt.Client

	topicPrefix    string
	topicOnline    string
	topicKey       string
	networkTimeout time.Duration
}

func (self *transportMqtt) Init(ctx context.Context, log *log2.Log, teleConfig Config, onMessage MessageCallback) error {
	self.log = log
	mqtt.ERROR = log
	mqtt.CRITICAL = log
	mqtt.WARN = log
	if teleConfig.LogDebug {
		mqtt.DEBUG = log
	}

	if _, err := url.ParseRequestURI(teleConfig.MqttBroker); err != nil {
		return errors.Annotatef(err, "tele mqtt_broker=%s", teleConfig.MqttBroker)
	}

	self.onMessage = onMessage
	self.stopCh = make(chan struct{})
	self.topicPrefix = teleConfig.topicPrefix()
	self.topicOnline = self.topic(TopicOnline)
	self.topicKey = self.topic(TopicKey)
	keepAlive := helpers.IntSecondDefault(teleConfig.KeepaliveSec, 60*time.Second)
	self.networkTimeout = helpers.IntSecondDefault(teleConfig.PingTimeoutSec, DefaultNetworkTimeout)

	defaultHandler := func(_ mqtt.Client, msg mqtt.Message) {
		self.log.Errorf("unexpected mqtt message topic=%s payload=%q", msg.Topic(), msg.Payload())
	}

	self.mopt = mqtt.NewClientOptions().
		AddBroker(teleConfig.MqttBroker).
		SetAutoReconnect(true).
		SetBinaryWill(self.topicOnline, []byte{0x00}, 1, true).
		SetCleanSession(false).
		SetClientID(teleConfig.clientId()).
		SetConnectTimeout(self.networkTimeout).
		SetConnectionLostHandler(self.connectLostHandler).
		SetDefaultPublishHandler(defaultHandler).
		SetKeepAlive(keepAlive).
		SetMaxReconnectInterval(self.networkTimeout).
		SetOrderMatters(false).
		SetPingTimeout(self.networkTimeout).
		SetWriteTimeout(self.networkTimeout)
	if teleConfig.MqttUsername != "" {
		self.mopt.SetUsername(teleConfig.MqttUsername).SetPassword(teleConfig.MqttPassword)
	}
	if teleConfig.StorePath != "" {
		self.mopt.SetStore(mqtt.NewFileStore(teleConfig.StorePath))
	}
	if teleConfig.TlsCaFile != "" {
		tlsconf := new(tls.Config)
		tlsconf.RootCAs = x509.NewCertPool()
		cabytes, err := ioutil.ReadFile(teleConfig.TlsCaFile)
		if err != nil {
			return errors.Annotatef(err, "tele TLS")
		}
		tlsconf.RootCAs.AppendCertsFromPEM(cabytes)
		self.mopt.SetTLSConfig(tlsconf)
	}
	if self.newClient == nil {
		self.newClient = mqtt.NewClient
	}
	self.m = self.newClient(self.mopt)

	go self.online()
	return nil
}

func (self *transportMqtt) Close() {
	close(self.stopCh)
	if self.m.IsConnected() {
		t := self.m.Publish(self.topicOnline, 1, true, []byte{0x00})
		_ = self.tokenWait(t, "publish offline")
	}
	self.m.Disconnect(uint(self.networkTimeout / time.Millisecond))
}

func (self *transportMqtt) Publish(topicSuffix string, retained bool, payload []byte) bool {
	topic := self.topic(topicSuffix)
	self.log.Debugf("mqtt publish topic=%s payload=%q", topic, payload)
	t := self.m.Publish(topic, 1, retained, payload)
	go func() { _ = self.tokenWait(t, "publish "+topic) }()
	return true
}

func (self *transportMqtt) topic(suffix string) string { return self.topicPrefix + "/" + suffix }

// online connects and subscribes, retrying until success or Close.
func (self *transportMqtt) online() {
	backoff := helpers.Backoff{Min: time.Second, Max: self.networkTimeout, K: 2}
	for self.isRunning() {
		t := self.m.Connect()
		if self.tokenWait(t, "connect") == nil {
			break // success path
		}
		self.sleep(backoff.Failure())
	}
	backoff.Reset()
	for self.isRunning() {
		t := self.m.Subscribe(self.topicKey, 1, self.mqttSubKey)
		if self.tokenWait(t, "subscribe:"+self.topicKey) == nil {
			self.log.Infof("mqtt online")
			self.m.Publish(self.topicOnline, 1, true, []byte{0x01})
			return // success path
		}
		self.sleep(backoff.Failure())
	}
}

func (self *transportMqtt) isRunning() bool {
	select {
	case <-self.stopCh:
		return false
	default:
		return true
	}
}

func (self *transportMqtt) sleep(d time.Duration) {
	select {
	case <-self.stopCh:
	case <-time.After(d):
	}
}

func (self *transportMqtt) mqttSubKey(_ mqtt.Client, msg mqtt.Message) {
	suffix := strings.TrimPrefix(msg.Topic(), self.topicPrefix+"/")
	self.onMessage(suffix, msg.Payload())
}

func (self *transportMqtt) connectLostHandler(c mqtt.Client, err error) {
	self.log.Infof("mqtt connection lost: %v", err)
}

func (self *transportMqtt) tokenWait(t mqtt.Token, tag string) error {
	if !t.Wait() {
		err := errors.Errorf("%s timeout", tag)
		self.log.Errorf("tele: MQTT %s", err.Error())
		return err
	}
	if err := t.Error(); err != nil {
		err = errors.Annotate(err, tag)
		self.log.Errorf("tele: MQTT %s", err.Error())
		return err
	}
	return nil
}
