package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/restoran-pos/internal/domain"
	"github.com/seu-repo/restoran-pos/internal/ports"
)

// intentModel is one row per intent. Position preserves set order.
type intentModel struct {
	Name         string         `gorm:"primaryKey;size:128"`
	Position     int            `gorm:"not null;index"`
	Triggers     pq.StringArray `gorm:"type:text[];not null"`
	DefaultSlots string         `gorm:"type:text"`
}

func (intentModel) TableName() string { return "nlu_intents" }

type TriggerRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTriggerRepository(db *gorm.DB, log *zap.Logger) ports.TriggerRepository {
	return &TriggerRepository{
		db:  db,
		log: log,
	}
}

func (r *TriggerRepository) Load(ctx context.Context) (domain.TriggerSet, error) {
	var rows []intentModel
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&rows).Error; err != nil {
		return domain.TriggerSet{}, fmt.Errorf("load intents: %w", err)
	}

	defs := make([]domain.IntentDefinition, 0, len(rows))
	for _, row := range rows {
		def := domain.IntentDefinition{
			Name:     row.Name,
			Triggers: []string(row.Triggers),
		}
		if row.DefaultSlots != "" {
			if err := json.Unmarshal([]byte(row.DefaultSlots), &def.DefaultSlots); err != nil {
				return domain.TriggerSet{}, fmt.Errorf("intent %q: decode default slots: %w", row.Name, err)
			}
		}
		defs = append(defs, def)
	}
	return domain.NewTriggerSet(defs...), nil
}

// Save replaces every row inside one transaction.
func (r *TriggerRepository) Save(ctx context.Context, set domain.TriggerSet) error {
	rows := make([]intentModel, 0, set.Len())
	for i, def := range set.Intents {
		row := intentModel{
			Name:     def.Name,
			Position: i,
			Triggers: pq.StringArray(append([]string{}, def.Triggers...)),
		}
		if len(def.DefaultSlots) > 0 {
			data, err := json.Marshal(def.DefaultSlots)
			if err != nil {
				return fmt.Errorf("intent %q: encode default slots: %w", def.Name, err)
			}
			row.DefaultSlots = string(data)
		}
		rows = append(rows, row)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&intentModel{}).Error; err != nil {
			return fmt.Errorf("clear intents: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert intents: %w", err)
		}
		return nil
	})
}
