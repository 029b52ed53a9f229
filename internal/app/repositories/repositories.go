package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles every repository for dependency injection at startup.
type Repositories struct {
	UserRepository         *UserRepository
	StudentRepository      *StudentRepository
	ApplicationRepository  *ApplicationRepository
	DocumentRepository     *DocumentRepository
	FieldReviewRepository  *FieldReviewRepository
	SponsorshipRepository  *SponsorshipRepository
	DisbursementRepository *DisbursementRepository
	ConversationRepository *ConversationRepository
}

// NewRepositories creates all repositories sharing the one pool
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(pool),
		StudentRepository:      NewStudentRepository(pool),
		ApplicationRepository:  NewApplicationRepository(pool),
		DocumentRepository:     NewDocumentRepository(pool),
		FieldReviewRepository:  NewFieldReviewRepository(pool),
		SponsorshipRepository:  NewSponsorshipRepository(pool),
		DisbursementRepository: NewDisbursementRepository(pool),
		ConversationRepository: NewConversationRepository(pool),
	}
}
