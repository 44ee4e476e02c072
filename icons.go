package worldviewer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLockState is returned when a container or door carries a lock
// state outside open/closed/locked.
var ErrUnknownLockState = errors.New("unknown lock state")

// Icon identifies an image in the icon set.
type Icon string

// Item icons.
const (
	IconKey           Icon = "Key.png"
	IconPlayer        Icon = "Player.png"
	IconObject        Icon = "Object.png"
	IconFood          Icon = "Food.png"
	IconSupporter     Icon = "Supporter.png"
	IconContainer     Icon = "Container.png"
	IconContainerOpen Icon = "ContainerOpen.png"
	IconDoor          Icon = "Door.png"
	IconDoorOpen      Icon = "DoorOpen.png"
)

// Marker icons.
const (
	IconAnchor   Icon = "Fixed.png"
	IconLocked   Icon = "Locked.png"
	IconUnlocked Icon = "Unlocked.png"
	IconCooked   Icon = "Cooked.png"
	IconUncooked Icon = "Uncooked.png"
	IconChevron  Icon = "Chevron.png"
)

var staticIcons = map[string]Icon{
	"anchor":   IconAnchor,
	"locked":   IconLocked,
	"closed":   IconUnlocked,
	"unlocked": IconUnlocked,
	"cooked":   IconCooked,
	"uncooked": IconUncooked,
	"chevron":  IconChevron,
}

// StaticIcon returns the marker icon registered under name, or the object
// icon when there is none.
func StaticIcon(name string) Icon {
	if icon, ok := staticIcons[name]; ok {
		return icon
	}
	return IconObject
}

// ResolveIcon returns the icon for an item. Containers and doors must carry
// a known lock state; anything else fails rather than guessing.
func ResolveIcon(item *Item) (Icon, error) {
	switch item.Type {
	case TypeKey:
		return IconKey, nil
	case TypePlayer:
		return IconPlayer, nil
	case TypeFood, TypeBiteSized:
		return IconFood, nil
	case TypeSupporter:
		return IconSupporter, nil
	case TypeContainer:
		return lockStateIcon(item, "container", IconContainerOpen, IconContainer)
	case TypeDoor:
		return lockStateIcon(item, "door", IconDoorOpen, IconDoor)
	default:
		return IconObject, nil
	}
}

func lockStateIcon(item *Item, kind string, open, shut Icon) (Icon, error) {
	switch item.OCL {
	case StateOpen:
		return open, nil
	case StateClosed, StateLocked:
		return shut, nil
	default:
		return "", fmt.Errorf("%s %q has status %q: %w", kind, item.Name, item.OCL, ErrUnknownLockState)
	}
}

// IconSet resolves icons to URLs below a template base path.
type IconSet struct {
	BasePath string
}

// URL returns the address of the icon image.
func (s IconSet) URL(icon Icon) string {
	return strings.TrimSuffix(s.BasePath, "/") + "/static/images/TextWorldIcons_" + string(icon)
}
