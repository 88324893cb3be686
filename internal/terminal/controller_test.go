package terminal

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodtrack/prodtrack/internal/api/models"
)

type apiCall struct {
	op    string
	force bool
}

// fakeAPI scripts server answers and records what the controller asked for.
type fakeAPI struct {
	mu          sync.Mutex
	calls       []apiCall
	response    models.AuthCheckResponse
	checkErr    error
	registerErr error
}

func (f *fakeAPI) CheckDevice(_ context.Context, _ string, force bool) (models.AuthCheckResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, apiCall{op: "check", force: force})
	if f.checkErr != nil {
		return models.AuthCheckResponse{}, f.checkErr
	}
	return f.response, nil
}

func (f *fakeAPI) RegisterDevice(_ context.Context, _, _, _ string) (models.AuthCheckResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, apiCall{op: "register"})
	if f.registerErr != nil {
		return models.AuthCheckResponse{}, f.registerErr
	}
	return f.response, nil
}

func (f *fakeAPI) ClearCache(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, apiCall{op: "clear"})
	return nil
}

func (f *fakeAPI) setResponse(resp models.AuthCheckResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.response = resp
	f.checkErr = nil
}

func (f *fakeAPI) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.op
	}
	return out
}

type fakePresenter struct {
	states     []State
	dismissed  int
	onRegister func(id *Identity)
}

func (p *fakePresenter) ShowState(state State, _ string) { p.states = append(p.states, state) }

func (p *fakePresenter) ShowRegistration(id *Identity) {
	if p.onRegister != nil {
		p.onRegister(id)
	}
}

func (p *fakePresenter) Dismiss() { p.dismissed++ }

func pendingResponse(deviceID string) models.AuthCheckResponse {
	return models.AuthCheckResponse{
		Success:      true,
		Status:       "pending",
		DeviceExists: true,
		DeviceID:     deviceID,
	}
}

func authorizedResponse(deviceID string) models.AuthCheckResponse {
	return models.AuthCheckResponse{
		Success:      true,
		Authorized:   true,
		Status:       "authorized",
		DeviceExists: true,
		DeviceID:     deviceID,
	}
}

func newTestController(t *testing.T, api *fakeAPI, p *fakePresenter, id Identity) *Controller {
	t.Helper()
	return NewController(ControllerConfig{
		API:       api,
		Identity:  id,
		StateDir:  t.TempDir(),
		Presenter: p,
		Logger:    zerolog.Nop(),
	})
}

func TestBootstrap_RegistersAndAwaitsApproval(t *testing.T) {
	api := &fakeAPI{response: pendingResponse("TAB-1111-2222-AAAAAA")}
	p := &fakePresenter{}
	c := newTestController(t, api, p, Identity{
		DeviceID: "TAB-1111-2222-AAAAAA",
		Name:     "Linha 1",
		Model:    "Samsung Tab A",
	})

	require.NoError(t, c.bootstrap(context.Background()))

	assert.Equal(t, StateAwaitingApproval, c.State())
	assert.Equal(t, []string{"register"}, api.ops())
	assert.Contains(t, p.states, StateAwaitingApproval)
}

func TestBootstrap_GeneratesIdentityAndFallbackName(t *testing.T) {
	api := &fakeAPI{}
	p := &fakePresenter{}
	c := newTestController(t, api, p, Identity{})
	api.response = pendingResponse("")

	require.NoError(t, c.bootstrap(context.Background()))

	id := c.Identity()
	assert.True(t, len(id.DeviceID) > 0)
	assert.NotEmpty(t, id.Name, "headless bootstrap must fall back to a generated name")

	// Identity round-trips through the state dir.
	loaded, err := LoadIdentity(c.stateDir)
	require.NoError(t, err)
	assert.Equal(t, id.DeviceID, loaded.DeviceID)
}

func TestBootstrap_OperatorNamesDevice(t *testing.T) {
	api := &fakeAPI{response: pendingResponse("TAB-2222-3333-BBBBBB")}
	p := &fakePresenter{onRegister: func(id *Identity) {
		id.Name = "Linha 4"
		id.Model = "Lenovo Tab M10"
	}}
	c := newTestController(t, api, p, Identity{DeviceID: "TAB-2222-3333-BBBBBB"})

	require.NoError(t, c.bootstrap(context.Background()))

	assert.Equal(t, "Linha 4", c.Identity().Name)
	assert.Equal(t, "Lenovo Tab M10", c.Identity().Model)
}

func TestTick_WaitingPollsEverySecondTickWithForce(t *testing.T) {
	api := &fakeAPI{response: pendingResponse("TAB-3333-4444-CCCCCC")}
	p := &fakePresenter{}
	c := newTestController(t, api, p, Identity{DeviceID: "TAB-3333-4444-CCCCCC", Name: "Linha 2"})
	ctx := context.Background()
	require.NoError(t, c.bootstrap(ctx))

	for i := 0; i < 4; i++ {
		c.Tick(ctx)
	}

	// register, then two polls (ticks 2 and 4), each preceded by a cache
	// flush because the state is a waiting one.
	assert.Equal(t, []string{"register", "clear", "check", "clear", "check"}, api.ops())
	for _, call := range api.calls {
		if call.op == "check" {
			assert.True(t, call.force, "waiting polls must force a fresh read")
		}
	}
}

func TestTick_AuthorizedSlowsDownAndSkipsForce(t *testing.T) {
	api := &fakeAPI{response: authorizedResponse("TAB-4444-5555-DDDDDD")}
	p := &fakePresenter{}
	c := newTestController(t, api, p, Identity{DeviceID: "TAB-4444-5555-DDDDDD", Name: "Linha 3"})
	ctx := context.Background()
	require.NoError(t, c.bootstrap(ctx))

	require.Equal(t, StateAuthorized, c.State())
	assert.Equal(t, 1, p.dismissed)

	for i := 0; i < 10; i++ {
		c.Tick(ctx)
	}

	// Two polls in ten ticks (5 and 10), no cache flush, no force.
	assert.Equal(t, []string{"register", "check", "check"}, api.ops())
	for _, call := range api.calls {
		assert.False(t, call.force)
	}
}

func TestTick_ApprovalFlipsToAuthorized(t *testing.T) {
	api := &fakeAPI{response: pendingResponse("TAB-5555-6666-EEEEEE")}
	p := &fakePresenter{}
	c := newTestController(t, api, p, Identity{DeviceID: "TAB-5555-6666-EEEEEE", Name: "Linha 1"})
	ctx := context.Background()
	require.NoError(t, c.bootstrap(ctx))
	require.Equal(t, StateAwaitingApproval, c.State())

	api.setResponse(authorizedResponse("TAB-5555-6666-EEEEEE"))
	c.Tick(ctx)
	c.Tick(ctx)

	assert.Equal(t, StateAuthorized, c.State())
	assert.Equal(t, 1, p.dismissed)
}

func TestTick_RevocationFlipsBackToDenied(t *testing.T) {
	api := &fakeAPI{response: authorizedResponse("TAB-6666-7777-FFFFFF")}
	p := &fakePresenter{}
	c := newTestController(t, api, p, Identity{DeviceID: "TAB-6666-7777-FFFFFF", Name: "Linha 2"})
	ctx := context.Background()
	require.NoError(t, c.bootstrap(ctx))
	require.Equal(t, StateAuthorized, c.State())

	api.setResponse(models.AuthCheckResponse{
		Success:      true,
		Status:       "revoked",
		DeviceExists: true,
		DeviceID:     "TAB-6666-7777-FFFFFF",
	})

	for i := 0; i < 5; i++ {
		c.Tick(ctx)
	}

	assert.Equal(t, StateAccessDenied, c.State())
}

func TestTick_CheckFailureIsNotFatal(t *testing.T) {
	api := &fakeAPI{response: pendingResponse("TAB-7777-8888-GGGGGG")}
	p := &fakePresenter{}
	c := newTestController(t, api, p, Identity{DeviceID: "TAB-7777-8888-GGGGGG", Name: "Linha 5"})
	ctx := context.Background()
	require.NoError(t, c.bootstrap(ctx))

	api.mu.Lock()
	api.checkErr = errors.New("connection refused")
	api.mu.Unlock()

	c.Tick(ctx)
	c.Tick(ctx)
	assert.Equal(t, StateError, c.State())

	// Server comes back: the loop recovers on its own.
	api.setResponse(authorizedResponse("TAB-7777-8888-GGGGGG"))
	c.Tick(ctx)
	c.Tick(ctx)
	assert.Equal(t, StateAuthorized, c.State())
}

func TestApply_AdoptsServerIssuedID(t *testing.T) {
	api := &fakeAPI{response: pendingResponse("TAB-9999-0000-HHHHHH")}
	p := &fakePresenter{}
	c := newTestController(t, api, p, Identity{DeviceID: "TAB-OLD0-0000-IIIIII", Name: "Linha 6"})

	require.NoError(t, c.bootstrap(context.Background()))

	assert.Equal(t, "TAB-9999-0000-HHHHHH", c.Identity().DeviceID)
	loaded, err := LoadIdentity(c.stateDir)
	require.NoError(t, err)
	assert.Equal(t, "TAB-9999-0000-HHHHHH", loaded.DeviceID)
}

func TestLoadIdentity_MissingFileIsZero(t *testing.T) {
	id, err := LoadIdentity(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, id.DeviceID)
}

func TestIdentity_SaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := Identity{DeviceID: "TAB-AAAA-BBBB-CCCCCC", Name: "Linha 7", Model: "Positivo Twist"}
	require.NoError(t, in.Save(dir))

	out, err := LoadIdentity(dir)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
