package responses

type ResponseDTO struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type HealthCheck struct {
	Status      string               `json:"status"`
	Timestamp   string               `json:"timestamp"`
	Environment string               `json:"environment"`
	AppURL      string               `json:"app_url"`
	Endpoints   HealthCheckEndpoints `json:"endpoints"`
}

type HealthCheckEndpoints struct {
	CallbackURL string `json:"callback_url"`
	ReturnURL   string `json:"return_url"`
	ErrorURL    string `json:"error_url"`
}
