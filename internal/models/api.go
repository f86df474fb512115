package models

type ClassifyRequest struct {
	Query string `json:"query" binding:"required"`
}

type ClassifyResponse struct {
	Condition   ConditionTag `json:"condition"`
	DisplayName string       `json:"display_name"`
	Emergency   bool         `json:"emergency"`
}

type EvidenceRequest struct {
	Query string `json:"query" binding:"required"`
}

type EvidenceResponse struct {
	EvidenceContext
	ResponseTime int `json:"response_time_ms"`
}

type ConditionInfo struct {
	Condition   ConditionTag `json:"condition"`
	DisplayName string       `json:"display_name"`
	Emergency   bool         `json:"emergency"`
}

type FeedbackRequest struct {
	QueryID      uint   `json:"query_id" binding:"required"`
	FeedbackType string `json:"feedback_type" binding:"required"`
	FeedbackText string `json:"feedback_text"`
}

type ConditionCount struct {
	Condition ConditionTag `json:"condition"`
	Count     int64        `json:"count"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
