package services

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/choprek/models"
)

func menuInput(date string) MenuInput {
	return MenuInput{
		Date:  date,
		Title: "Menu " + date,
		Options: []models.MenuOption{
			{Name: "Soto Ayam", Price: 22000},
			{Name: "Pecel", Price: 18000, DietaryTag: "vegetarian"},
		},
	}
}

func TestActivateMenuIsExclusive(t *testing.T) {
	env := newTestEnv(t)

	monday, err := env.menus.CreateMenu(ctx, menuInput("2024-03-04"))
	require.NoError(t, err)
	assert.False(t, monday.IsActive)
	tuesday, err := env.menus.CreateMenu(ctx, menuInput("2024-03-05"))
	require.NoError(t, err)

	_, err = env.menus.GetActiveMenu(ctx)
	assert.True(t, errors.Is(err, ErrNoActiveMenu))

	require.NoError(t, env.menus.ActivateMenu(ctx, monday.ID))
	require.NoError(t, env.menus.ActivateMenu(ctx, tuesday.ID))

	active, err := env.menus.GetActiveMenu(ctx)
	require.NoError(t, err)
	assert.Equal(t, tuesday.ID, active.ID)

	var activeCount int64
	require.NoError(t, env.db.Model(&models.Menu{}).Where("is_active = ?", true).Count(&activeCount).Error)
	assert.Equal(t, int64(1), activeCount)

	err = env.menus.ActivateMenu(ctx, "missing")
	assert.True(t, errors.Is(err, ErrMenuNotFound))
}

func TestUnpublishDeactivatesMenu(t *testing.T) {
	env := newTestEnv(t)
	menu, err := env.menus.CreateMenu(ctx, menuInput("2024-03-04"))
	require.NoError(t, err)
	require.NoError(t, env.menus.ActivateMenu(ctx, menu.ID))

	require.NoError(t, env.menus.SetMenuPublished(ctx, menu.ID, false))
	got, err := env.menus.GetMenuByID(ctx, menu.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.False(t, got.IsPublished)

	_, err = env.menus.GetActiveMenu(ctx)
	assert.True(t, errors.Is(err, ErrNoActiveMenu))
}

func TestDeleteMenu(t *testing.T) {
	env := newTestEnv(t)
	menu, err := env.menus.CreateMenu(ctx, menuInput("2024-03-04"))
	require.NoError(t, err)
	require.NoError(t, env.menus.ActivateMenu(ctx, menu.ID))

	err = env.menus.DeleteMenu(ctx, menu.ID)
	assert.True(t, errors.Is(err, ErrMenuActive))

	require.NoError(t, env.menus.SetMenuPublished(ctx, menu.ID, false))
	require.NoError(t, env.menus.DeleteMenu(ctx, menu.ID))
	_, err = env.menus.GetMenuByID(ctx, menu.ID)
	assert.True(t, errors.Is(err, ErrMenuNotFound))
}

func TestCreateAndUpdateMenuValidation(t *testing.T) {
	env := newTestEnv(t)

	in := menuInput("2024-03-04")
	in.Options = append(in.Options, models.MenuOption{Name: "Soto Ayam", Price: 1})
	_, err := env.menus.CreateMenu(ctx, in)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = env.menus.CreateMenu(ctx, MenuInput{Date: "2024-03-04"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	menu, err := env.menus.CreateMenu(ctx, menuInput("2024-03-04"))
	require.NoError(t, err)

	title := "Menu Spesial"
	options := []models.MenuOption{{Name: "Rendang", Price: 30000}}
	updated, err := env.menus.UpdateMenu(ctx, menu.ID, MenuUpdate{Title: &title, Options: &options})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	require.Len(t, updated.Options, 1)

	got, err := env.menus.GetMenuByID(ctx, menu.ID)
	require.NoError(t, err)
	_, ok := got.FindOption("Rendang")
	assert.True(t, ok)

	bad := "besok"
	_, err = env.menus.UpdateMenu(ctx, menu.ID, MenuUpdate{Date: &bad})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	menus, err := env.menus.GetMenus(ctx)
	require.NoError(t, err)
	assert.Len(t, menus, 1)
}
