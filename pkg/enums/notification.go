package enums

import "fmt"

// NotificationType classifies in-app notification payloads.
type NotificationType string

const (
	NotificationTypeDonationNearby NotificationType = "donation_nearby"
	NotificationTypeStatusUpdate   NotificationType = "status_update"
	NotificationTypeSystem         NotificationType = "system"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeDonationNearby,
	NotificationTypeStatusUpdate,
	NotificationTypeSystem,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
