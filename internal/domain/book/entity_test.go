package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewBook 新书全部副本在架
func TestNewBook(t *testing.T) {
	b := NewBook("9787115428028", "Go语言实战", "William Kennedy", 2017, GenreTechnology, 5, "", "")

	assert.Equal(t, 5, b.TotalCopies)
	assert.Equal(t, 5, b.AvailableCopies, "新书在架数应等于总副本数")
	assert.True(t, b.HasAvailableCopy())
	assert.NoError(t, b.CheckConsistency())
}

// TestBook_CheckOutCheckIn 借出与归还的副本台账变化
func TestBook_CheckOutCheckIn(t *testing.T) {
	b := NewBook("9787115428028", "Go语言实战", "William Kennedy", 2017, GenreTechnology, 2, "", "")

	t.Run("借出递减在架数", func(t *testing.T) {
		require.NoError(t, b.CheckOut())
		assert.Equal(t, 1, b.AvailableCopies)
		require.NoError(t, b.CheckOut())
		assert.Equal(t, 0, b.AvailableCopies)
		assert.False(t, b.HasAvailableCopy())
	})

	t.Run("无副本时借出被拒绝", func(t *testing.T) {
		err := b.CheckOut()
		assert.ErrorIs(t, err, ErrNoAvailableCopies)
		assert.Equal(t, 0, b.AvailableCopies, "失败的借出不应改变在架数")
	})

	t.Run("归还递增在架数", func(t *testing.T) {
		require.NoError(t, b.CheckIn())
		require.NoError(t, b.CheckIn())
		assert.Equal(t, 2, b.AvailableCopies)
	})

	t.Run("在架数已满时归还视为台账漂移", func(t *testing.T) {
		err := b.CheckIn()
		assert.ErrorIs(t, err, ErrCopyCountDrift)
		assert.Equal(t, 2, b.AvailableCopies)
	})
}

// TestBook_UpdateCopies 调整馆藏副本数
func TestBook_UpdateCopies(t *testing.T) {
	t.Run("扩充副本数同步增加在架数", func(t *testing.T) {
		b := NewBook("9787115428028", "Go语言实战", "William Kennedy", 2017, GenreTechnology, 3, "", "")
		require.NoError(t, b.CheckOut()) // 借出1本,在架2

		require.NoError(t, b.UpdateCopies(5))
		assert.Equal(t, 5, b.TotalCopies)
		assert.Equal(t, 4, b.AvailableCopies, "借出数保持1不变")
	})

	t.Run("缩减副本数不能低于借出数", func(t *testing.T) {
		b := NewBook("9787115428028", "Go语言实战", "William Kennedy", 2017, GenreTechnology, 3, "", "")
		require.NoError(t, b.CheckOut())
		require.NoError(t, b.CheckOut()) // 借出2本

		err := b.UpdateCopies(1)
		assert.ErrorIs(t, err, ErrCopiesBelowBorrowed)
		assert.Equal(t, 3, b.TotalCopies)

		// 缩减到刚好等于借出数是允许的(在架0)
		require.NoError(t, b.UpdateCopies(2))
		assert.Equal(t, 0, b.AvailableCopies)
	})

	t.Run("副本数必须大于0", func(t *testing.T) {
		b := NewBook("9787115428028", "Go语言实战", "William Kennedy", 2017, GenreTechnology, 3, "", "")
		assert.ErrorIs(t, b.UpdateCopies(0), ErrInvalidCopies)
	})
}

// TestGenre_IsValid 分类固定集合
func TestGenre_IsValid(t *testing.T) {
	for _, g := range []Genre{GenreFiction, GenreNonFiction, GenreScience, GenreHistory, GenreBiography, GenreTechnology, GenreOther} {
		assert.True(t, g.IsValid(), "%s应为合法分类", g)
	}
	assert.False(t, Genre("Poetry").IsValid())
	assert.False(t, Genre("").IsValid())
}

// TestBook_CheckConsistency 台账不变量
func TestBook_CheckConsistency(t *testing.T) {
	b := NewBook("9787115428028", "Go语言实战", "William Kennedy", 2017, GenreTechnology, 3, "", "")
	assert.NoError(t, b.CheckConsistency())

	b.AvailableCopies = 4
	assert.ErrorIs(t, b.CheckConsistency(), ErrCopyCountDrift)

	b.AvailableCopies = -1
	assert.ErrorIs(t, b.CheckConsistency(), ErrCopyCountDrift)
}
