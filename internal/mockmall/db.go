package mockmall

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openDB opens the sqlite store and migrates the schema. The default DSN is
// an in-memory database, which is what the test suite uses.
func openDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&Account{},
		&Product{},
		&Stockpile{},
		&CartItem{},
		&Order{},
		&CouponTemplate{},
		&Coupon{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}
