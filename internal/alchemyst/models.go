package alchemyst

// Request models
type AddContextRequest struct {
	UserID         string      `json:"user_id,omitempty"`
	OrganizationID string      `json:"organization_id,omitempty"`
	Documents      []Document  `json:"documents,omitempty"`
	Source         string      `json:"source,omitempty"`
	ContextType    string      `json:"context_type,omitempty"`
	Scope          string      `json:"scope,omitempty"`
	Metadata       interface{} `json:"metadata,omitempty"`
	Chained        bool        `json:"chained,omitempty"`
}

type Document struct {
	Content      string `json:"content"`
	FileName     string `json:"fileName,omitempty"`
	FileType     string `json:"fileType,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
	LastModified string `json:"lastModified,omitempty"`
}

type SearchRequest struct {
	UserID                     string      `json:"user_id,omitempty"`
	Query                      string      `json:"query"`
	SimilarityThreshold        float64     `json:"similarity_threshold"`
	MinimumSimilarityThreshold float64     `json:"minimum_similarity_threshold"`
	TopK                       int         `json:"top_k,omitempty"`
	Scope                      string      `json:"scope,omitempty"`
	Metadata                   interface{} `json:"metadata,omitempty"`
}

type DeleteContextRequest struct {
	Source         string `json:"source,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	OrganizationID string `json:"organization_id,omitempty"`
	ByDoc          bool   `json:"by_doc,omitempty"`
	ByID           bool   `json:"by_id,omitempty"`
}

// Response models
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

type ObjectID struct {
	OID string `json:"$oid"`
}

type SearchResult struct {
	ID       ObjectID `json:"_id"`
	Text     string   `json:"text"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

type Metadata struct {
	Size     int64  `json:"size"`
	FileName string `json:"file_name"`
	DocType  string `json:"doc_type"`
	Title    string `json:"title,omitempty"`
	URL      string `json:"url,omitempty"`
	Page     int    `json:"page,omitempty"`
}
