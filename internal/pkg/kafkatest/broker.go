// Package kafkatest runs a throwaway single-node Kafka for integration tests.
package kafkatest

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	dockercfg "github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	DefaultImage = "apache/kafka:3.8.0"
	clusterID    = "4L6g3nShT-eMCtK--X86sw"
)

var clientPort = nat.Port("9092/tcp")

// Broker is a running KRaft broker advertised on a host port.
type Broker struct {
	container tc.Container
	addr      string
}

// Start launches image, or DefaultImage when empty, with the client listener
// bound to a free host port so advertised and mapped addresses agree.
func Start(ctx context.Context, image string) (*Broker, error) {
	if image == "" {
		image = DefaultImage
	}
	hostPort, err := freePort()
	if err != nil {
		return nil, err
	}

	req := tc.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{string(clientPort)},
		Env: map[string]string{
			"KAFKA_NODE_ID":                                  "1",
			"KAFKA_PROCESS_ROLES":                            "broker,controller",
			"KAFKA_LISTENER_SECURITY_PROTOCOL_MAP":           "CONTROLLER:PLAINTEXT,PLAINTEXT:PLAINTEXT,PLAINTEXT_HOST:PLAINTEXT",
			"KAFKA_LISTENERS":                                "CONTROLLER://:29093,PLAINTEXT_HOST://:9092,PLAINTEXT://:19092",
			"KAFKA_ADVERTISED_LISTENERS":                     fmt.Sprintf("PLAINTEXT_HOST://localhost:%d,PLAINTEXT://localhost:19092", hostPort),
			"KAFKA_CONTROLLER_LISTENER_NAMES":                "CONTROLLER",
			"KAFKA_CONTROLLER_QUORUM_VOTERS":                 "1@localhost:29093",
			"KAFKA_INTER_BROKER_LISTENER_NAME":               "PLAINTEXT",
			"KAFKA_OFFSETS_TOPIC_REPLICATION_FACTOR":         "1",
			"KAFKA_TRANSACTION_STATE_LOG_MIN_ISR":            "1",
			"KAFKA_TRANSACTION_STATE_LOG_REPLICATION_FACTOR": "1",
			"KAFKA_GROUP_INITIAL_REBALANCE_DELAY_MS":         "0",
			"CLUSTER_ID":                                     clusterID,
		},
		WaitingFor: wait.ForListeningPort(clientPort).WithStartupTimeout(2 * time.Minute),
		HostConfigModifier: func(hc *dockercfg.HostConfig) {
			hc.PortBindings = nat.PortMap{
				clientPort: []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: strconv.Itoa(hostPort)}},
			}
		},
	}

	ctr, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return nil, fmt.Errorf("start kafka container: %w", err)
	}
	return &Broker{container: ctr, addr: fmt.Sprintf("localhost:%d", hostPort)}, nil
}

// Addr is the bootstrap address in host:port form.
func (b *Broker) Addr() string { return b.addr }

// ConsumeOne polls topic from the start until a record arrives or timeout elapses.
func (b *Broker) ConsumeOne(ctx context.Context, topic string, timeout time.Duration) (*kgo.Record, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(b.addr),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, err
	}
	defer cl.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		fetches := cl.PollFetches(ctx)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("no record on %s within %s", topic, timeout)
		}
		if it := fetches.RecordIter(); !it.Done() {
			return it.Next(), nil
		}
	}
}

func (b *Broker) Terminate(ctx context.Context) error {
	if b == nil || b.container == nil {
		return nil
	}
	return b.container.Terminate(ctx)
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("reserve host port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
