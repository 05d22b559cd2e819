package proto

// Payloads for the REST collaborators.

// CrearSalaRequest is the body of POST /api/crear-sala.
type CrearSalaRequest struct {
	Nombre string `json:"nombre"`
}

// CrearSalaResponse is the success body of POST /api/crear-sala.
type CrearSalaResponse struct {
	Success bool   `json:"success"`
	Sala    string `json:"sala"`
}

// APIError is the error body of any /api endpoint.
type APIError struct {
	Error string `json:"error"`
}

// HistorialEntry is one message in GET /api/historial/{sala},
// ordered oldest-first by the server.
type HistorialEntry struct {
	Usuario   string `json:"usuario"`
	Mensaje   string `json:"mensaje"`
	FechaHora string `json:"fecha_hora"`
}
