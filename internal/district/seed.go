package district

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/logging"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

// barangays are the 24 districts of Gloria, Oriental Mindoro
var barangays = []domain.District{
	{Name: "Agos", Code: "GLR-AGS", Population: 1200, ContactPerson: "Juan Dela Cruz", ContactNumber: "09171234567"},
	{Name: "Agsalin", Code: "GLR-AGN", Population: 850, ContactPerson: "Maria Santos", ContactNumber: "09181234567"},
	{Name: "Alma Villa", Code: "GLR-AVL", Population: 1500, ContactPerson: "Pedro Reyes", ContactNumber: "09191234567"},
	{Name: "Andres Bonifacio", Code: "GLR-ABF", Population: 2100, ContactPerson: "Rosa Garcia", ContactNumber: "09201234567"},
	{Name: "Balete", Code: "GLR-BLT", Population: 980, ContactPerson: "Jose Ramos", ContactNumber: "09211234567"},
	{Name: "Banilad", Code: "GLR-BNL", Population: 1350, ContactPerson: "Ana Cruz", ContactNumber: "09221234567"},
	{Name: "Banus", Code: "GLR-BNS", Population: 1750, ContactPerson: "Carlos Mendoza", ContactNumber: "09231234567"},
	{Name: "Bulaklakan", Code: "GLR-BLK", Population: 1100, ContactPerson: "Lina Torres", ContactNumber: "09241234567"},
	{Name: "Buong Lupa", Code: "GLR-BLP", Population: 1450, ContactPerson: "Miguel Fernandez", ContactNumber: "09251234567"},
	{Name: "Guimbonan", Code: "GLR-GMB", Population: 890, ContactPerson: "Elena Rivera", ContactNumber: "09261234567"},
	{Name: "Kawit", Code: "GLR-KWT", Population: 1650, ContactPerson: "Ramon Santos", ContactNumber: "09271234567"},
	{Name: "Macario Adriatico", Code: "GLR-MAD", Population: 2300, ContactPerson: "Sofia Villanueva", ContactNumber: "09281234567"},
	{Name: "Malamig", Code: "GLR-MLG", Population: 1280, ContactPerson: "Antonio Lopez", ContactNumber: "09291234567"},
	{Name: "Malayong", Code: "GLR-MLY", Population: 950, ContactPerson: "Carmen Diaz", ContactNumber: "09301234567"},
	{Name: "Malubay", Code: "GLR-MLB", Population: 1580, ContactPerson: "Francisco Morales", ContactNumber: "09311234567"},
	{Name: "Matulatula", Code: "GLR-MTL", Population: 1120, ContactPerson: "Josefa Alvarez", ContactNumber: "09321234567"},
	{Name: "Mirayan", Code: "GLR-MRY", Population: 1390, ContactPerson: "Ricardo Pascual", ContactNumber: "09331234567"},
	{Name: "Narra", Code: "GLR-NRA", Population: 1820, ContactPerson: "Gloria Santiago", ContactNumber: "09341234567"},
	{Name: "Paclasan", Code: "GLR-PCL", Population: 1050, ContactPerson: "Domingo Castro", ContactNumber: "09351234567"},
	{Name: "Papandungin", Code: "GLR-PPD", Population: 1270, ContactPerson: "Teresa Ocampo", ContactNumber: "09361234567"},
	{Name: "Poblacion", Code: "GLR-POB", Population: 3200, ContactPerson: "Manuel Reyes", ContactNumber: "09371234567"},
	{Name: "Santa Maria", Code: "GLR-SMA", Population: 1480, ContactPerson: "Cristina Flores", ContactNumber: "09381234567"},
	{Name: "Santa Theresa", Code: "GLR-STH", Population: 1610, ContactPerson: "Jorge Mendez", ContactNumber: "09391234567"},
	{Name: "Tambong", Code: "GLR-TMB", Population: 1150, ContactPerson: "Patricia Ruiz", ContactNumber: "09401234567"},
}

// Barangays returns a copy of the seeded district records with their IDs set
func Barangays() []domain.District {
	out := make([]domain.District, len(barangays))
	for i, d := range barangays {
		d.ID = types.NewDeterministicID("district", d.Code)
		out[i] = d
	}
	return out
}

// Seed inserts the barangays that are not present yet and returns how
// many were added. Running it again is a no-op.
func Seed(ctx context.Context, store domain.Store, log *zap.Logger) (int, error) {
	log = logging.OrNop(log)

	inserted := 0
	err := store.WithinTx(ctx, func(tx domain.Tx) error {
		now := time.Now().UTC()
		for _, d := range Barangays() {
			d.CreatedAt = now
			ok, err := tx.UpsertDistrict(ctx, &d)
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info("districts seeded", zap.Int("inserted", inserted), zap.Int("total", len(barangays)))
	return inserted, nil
}
