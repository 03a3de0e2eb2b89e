package dto

// APIResponse is the envelope of every successful response
type APIResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message,omitempty" example:"Personal details saved successfully"`
	Data    interface{} `json:"data,omitempty"`
}

// NewSuccessResponse wraps data in the success envelope
func NewSuccessResponse(message string, data interface{}) *APIResponse {
	return &APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// UploadResponse describes a stored document
type UploadResponse struct {
	URL      string `json:"url" example:"https://res.cloudinary.com/demo/raw/upload/v1/documents/a.pdf"`
	PublicID string `json:"publicId,omitempty"`
}

// AcademicUploadResponse describes a stored academic document
type AcademicUploadResponse struct {
	URL          string `json:"url"`
	DocumentType string `json:"documentType" example:"qualification"`
	Index        int    `json:"index" example:"0"`
}
