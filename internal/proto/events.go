package proto

import "encoding/json"

// Envelope wraps every realtime event in both directions. Data holds the
// event-specific payload and stays raw until the handler for Event decodes it.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Server -> client events.
const (
	EventRegistroExitoso    = "registro_exitoso"
	EventError              = "error"
	EventUsuariosConectados = "usuarios_conectados"
	EventUsuariosGlobales   = "actualizar_usuarios_globales"
	EventUsuarioUnido       = "usuario_unido"
	EventUsuarioSalio       = "usuario_salio"
	EventNuevoMensaje       = "nuevo_mensaje"
	EventMensajePrivado     = "mensaje_privado"
	EventNuevaSala          = "nueva_sala"
	EventUsuariosSala       = "usuarios_sala"
)

// Client -> server events.
const (
	EventRegistrarUsuario      = "registrar_usuario"
	EventUnirseSala            = "unirse_sala"
	EventEnviarMensaje         = "enviar_mensaje"
	EventEnviarMensajePrivado  = "enviar_mensaje_privado"
	EventSolicitarUsuariosSala = "solicitar_usuarios_sala"
)

// TimeLayout is the fecha_hora format the backend uses everywhere.
const TimeLayout = "2006-01-02 15:04:05"

// RegistroExitoso confirms registration and assigns the identity.
type RegistroExitoso struct {
	Username string `json:"username"`
}

// ErrorData carries a human-readable rejection from the server.
type ErrorData struct {
	Mensaje string `json:"mensaje"`
}

// Usuarios is the payload of both global roster snapshots
// (usuarios_conectados, actualizar_usuarios_globales).
type Usuarios struct {
	Usuarios []string `json:"usuarios"`
}

// UsuarioUnido announces a join to the room along with the fresh
// participant snapshot. UsuarioSalio is shaped identically.
type UsuarioUnido struct {
	Username string   `json:"username"`
	Usuarios []string `json:"usuarios"`
}

// UsuarioSalio announces a user leaving the room.
type UsuarioSalio struct {
	Username string   `json:"username"`
	Usuarios []string `json:"usuarios"`
}

// NuevoMensaje is a room-scoped chat message.
type NuevoMensaje struct {
	Usuario   string `json:"usuario"`
	Mensaje   string `json:"mensaje"`
	FechaHora string `json:"fecha_hora"`
	Sala      string `json:"sala"`
}

// MensajePrivado is a direct message; the server echoes it to both parties.
type MensajePrivado struct {
	Remitente    string `json:"remitente"`
	Destinatario string `json:"destinatario"`
	Mensaje      string `json:"mensaje"`
	FechaHora    string `json:"fecha_hora"`
}

// NuevaSala announces a freshly created room to everyone.
type NuevaSala struct {
	Sala string `json:"sala"`
}

// UsuariosSala is the participant snapshot for a room, sent on request.
type UsuariosSala struct {
	Sala     string   `json:"sala,omitempty"`
	Usuarios []string `json:"usuarios"`
}

// RegistrarUsuario asks the server to register the given display name.
type RegistrarUsuario struct {
	Username string `json:"username"`
}

// UnirseSala subscribes the sender to a room.
type UnirseSala struct {
	Sala string `json:"sala"`
}

// EnviarMensaje sends a chat message to a room.
type EnviarMensaje struct {
	Mensaje string `json:"mensaje"`
	Sala    string `json:"sala"`
}

// EnviarMensajePrivado sends a direct message to another user.
type EnviarMensajePrivado struct {
	Mensaje      string `json:"mensaje"`
	Destinatario string `json:"destinatario"`
}

// SolicitarUsuariosSala requests the participant snapshot for a room.
type SolicitarUsuariosSala struct {
	Sala string `json:"sala"`
}

// NewEnvelope marshals payload into an Envelope for the given event tag.
func NewEnvelope(event string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: data}, nil
}
