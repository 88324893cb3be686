package device

// State is the authorization classification of one request or check.
type State string

const (
	StateNoDeviceID       State = "no_device_id"
	StateChecking         State = "checking"
	StateNewDevice        State = "new_device"
	StateAwaitingApproval State = "awaiting_approval"
	StateAccessDenied     State = "access_denied"
	StateAuthorized       State = "authorized"
	StateError            State = "error"
)

// Classification is the tagged result of the capability-classification
// stage. The middleware attaches it to every protected request; route
// handlers switch over State to enforce. Bypass is only ever true together
// with StateAuthorized.
type Classification struct {
	State        State
	DeviceID     string
	Authorized   bool
	Bypass       bool
	NewDevice    bool
	DeviceExists bool
	Message      string
	Device       *Device
}

// User-facing messages for each classification outcome.
const (
	msgAuthorized  = "Dispositivo autorizado"
	msgAwaiting    = "Aguardando autorização do administrador."
	msgDenied      = "Acesso negado. Entre em contato com o administrador."
	msgRegistered  = "Dispositivo registrado automaticamente. Aguardando autorização do administrador."
	msgCheckFailed = "Erro ao verificar autorização. Tente novamente mais tarde."
	msgMissingID   = "ID do dispositivo não fornecido"
)
