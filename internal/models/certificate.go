package models

// TaxonomyCategoryCertificate is the cs_master.category value for
// qualification labels. Other categories (service codes, doc types, ...)
// share the same master table and are ignored by the eligibility judge.
const TaxonomyCategoryCertificate = "certificate"

// CertificateDocument 従業員が保有する資格証（user_documents テーブル）
type CertificateDocument struct {
	UserID string `json:"user_id" db:"user_id"`
	Label  string `json:"label" db:"label"` // free text, resolved against cs_master
}

// CertificateMaster 資格マスタ1行（cs_master テーブル）
type CertificateMaster struct {
	Category     string  `json:"category" db:"category"`
	Label        string  `json:"label" db:"label"`
	IsActive     bool    `json:"is_active" db:"is_active"`
	ServiceGroup *string `json:"service_group,omitempty" db:"service_group"`
}

// SubjectDocument 利用者の契約・計画書類（cs_documents テーブル）
type SubjectDocument struct {
	KaipokeCsID string `json:"kaipoke_cs_id" db:"kaipoke_cs_id"`
	DocType     string `json:"doc_type" db:"doc_type"`
	Status      string `json:"status" db:"status"` // valid, draft, expired
}

// SubjectDocStatusValid is the cs_documents.status value that satisfies a
// required document; drafts and expired documents do not.
const SubjectDocStatusValid = "valid"
