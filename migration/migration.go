package migration

import (
	"github.com/capstack/goregistrar/models"
	"github.com/jinzhu/gorm"
	gormigrate "gopkg.in/gormigrate.v1"
)

// Migration contains all of the incremental migrations that the
// database requires to keep its schema up to date with current
// GoRegistrar source code.
func Migration(db *gorm.DB) *gormigrate.Gormigrate {
	return gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// initial migration
		{
			ID: "202601121030",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&models.Issuer{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.Security{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.Shareholder{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.Transaction{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.Position{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.CorporateAction{}).Error; err != nil {
					return err
				}
				return tx.AutoMigrate(&models.Restriction{}).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return nil
			},
		},
		// reconciliation audit trail
		{
			ID: "202602031415",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.ReconciliationAudit{}).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.DropTableIfExists("reconciliation_audits").Error
			},
		},
		// restriction review flag for positions that fell below a hold
		{
			ID: "202602191120",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Restriction{}).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return nil
			},
		},
	})
}
