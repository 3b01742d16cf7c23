//nolint:errcheck
package lifecycle_test

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/cftops/cftctl/internal/cft"
	"github.com/cftops/cftctl/internal/conn"
	"github.com/cftops/cftctl/internal/lifecycle"
	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	cftPort    = "1768/tcp"
	cftAPIPath = "/cft/api/v1"
)

type cftContainer struct {
	testcontainers.Container
	URI string
}

// TestE2E drives a message transfer through its lifecycle against a real
// Transfer CFT container. The image is taken from CFTCTL_E2E_IMAGE.
func TestE2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test...")
	}
	image := os.Getenv("CFTCTL_E2E_IMAGE")
	if image == "" {
		t.Skip("CFTCTL_E2E_IMAGE not set, skipping E2E test...")
	}
	ctx := context.Background()
	cftC, err := setupCFT(ctx, image)
	if err != nil {
		t.Fatalf("unable to setup transfer cft: %s", err)
	}
	t.Cleanup(func() {
		if err := cftC.Terminate(ctx); err != nil {
			t.Fatal(err)
		}
	})

	c, err := conn.NewHTTP(conn.Config{
		BaseURL:  cftC.URI,
		Username: os.Getenv("CFTCTL_E2E_USERNAME"),
		Password: os.Getenv("CFTCTL_E2E_PASSWORD"),
		Insecure: true,
		Timeout:  time.Minute,
	})
	require.NoError(t, err)
	d := lifecycle.New(cft.New(c))

	req := lifecycle.Request{
		State:   lifecycle.Present,
		IDA:     uuid.NewString()[:8],
		Partner: "PARIS",
		IDM:     "M1",
		Msg:     "A frog walks into a bank...",
	}
	created, err := d.Run(ctx, req)
	require.NoError(t, err)
	assert.True(t, created.Changed)

	again, err := d.Run(ctx, req)
	require.NoError(t, err)
	assert.False(t, again.Changed)

	tr, ok := again.Body.(cft.Transfer)
	require.True(t, ok)
	gone, err := d.Run(ctx, lifecycle.Request{State: lifecycle.Absent, IDTU: tr.IDTU()})
	require.NoError(t, err)
	assert.True(t, gone.Changed)

	missing, err := d.Run(ctx, lifecycle.Request{State: lifecycle.Absent, IDTU: tr.IDTU()})
	require.NoError(t, err)
	assert.False(t, missing.Changed)
}

func setupCFT(ctx context.Context, image string) (*cftContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{cftPort},
		WaitingFor:   wait.ForHTTP(cftAPIPath+"/about").
			WithPort(nat.Port(cftPort)).
			WithTLS(true).
			WithAllowInsecure(true).
			WithStartupTimeout(5 * time.Minute).
			WithStatusCodeMatcher(func(status int) bool {
				return status == http.StatusOK || status == http.StatusUnauthorized
			}),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})

	if err != nil {
		return nil, err
	}
	ip, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}
	mappedPort, err := container.MappedPort(ctx, nat.Port(cftPort))
	if err != nil {
		return nil, err
	}
	uri := fmt.Sprintf("https://%s:%d%s", ip, mappedPort.Int(), cftAPIPath)

	return &cftContainer{Container: container, URI: uri}, nil
}
