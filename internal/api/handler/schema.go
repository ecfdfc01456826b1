package handler

// errorResponse documents the envelope of every non-validation failure.
type errorResponse struct {
	Error string `json:"error"`
}

type fieldErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// validationErrorResponse documents the 400 body for rejected fields.
type validationErrorResponse struct {
	Errors []fieldErrorResponse `json:"errors"`
}

type messageResponse struct {
	Msg string `json:"msg"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// --- Profile ---

type profileRequest struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Status         string `json:"status"         validate:"required"`
	Bio            string `json:"bio"`
	GitHubUsername string `json:"githubusername"`
	Skills         string `json:"skills"         validate:"required"`
	YouTube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	LinkedIn       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

type experienceRequest struct {
	Title       string `json:"title"       validate:"required"`
	Company     string `json:"company"     validate:"required"`
	Location    string `json:"location"`
	From        string `json:"from"        validate:"required,datetime=2006-01-02"`
	To          string `json:"to"          validate:"omitempty,datetime=2006-01-02"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type educationRequest struct {
	School       string `json:"school"       validate:"required"`
	Degree       string `json:"degree"       validate:"required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"required"`
	From         string `json:"from"         validate:"required,datetime=2006-01-02"`
	To           string `json:"to"           validate:"omitempty,datetime=2006-01-02"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// --- Posts ---

type textRequest struct {
	Text string `json:"text" validate:"required"`
}
