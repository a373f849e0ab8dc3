// models/gorm_models_test.go
package models

import (
	"reflect"
	"strings"
	"testing"
)

// 房间码不能是唯一索引: 房间关闭后历史行保留, 同一个码会再次发放
func TestGormRoom_CodeIndexNotUnique(t *testing.T) {
	field, ok := reflect.TypeOf(GormRoom{}).FieldByName("Code")
	if !ok {
		t.Fatal("GormRoom缺少Code字段")
	}
	tag := field.Tag.Get("gorm")
	if strings.Contains(tag, "uniqueIndex") {
		t.Errorf("房间码不能带唯一索引: %q", tag)
	}
	if !strings.Contains(tag, "index") {
		t.Errorf("房间码应该有普通索引: %q", tag)
	}
}

func TestGormRoomPlayer_RoomUserUnique(t *testing.T) {
	typ := reflect.TypeOf(GormRoomPlayer{})
	for _, name := range []string{"RoomID", "UserID"} {
		field, ok := typ.FieldByName(name)
		if !ok {
			t.Fatalf("GormRoomPlayer缺少%s字段", name)
		}
		if !strings.Contains(field.Tag.Get("gorm"), "uniqueIndex:idx_room_user") {
			t.Errorf("%s应该在idx_room_user唯一索引里", name)
		}
	}
}
