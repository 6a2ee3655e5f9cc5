package conffixture

import (
	"strings"

	"github.com/sirupsen/logrus"

	conf "github.com/goliatone/go-conf"
	"github.com/goliatone/go-conf/pkg/messaging"
)

// legacyKeys maps notification option names used before the options moved to
// their own group onto their current names.
var legacyKeys = map[string]string{
	"notification_driver":        "driver",
	"notification_transport_url": "transport_url",
	"notification_topics":        "topics",
}

// LegacyRewrite returns override middleware that redirects the old
// notification_* keys to their current name in the notifications group. Any
// other key passes through untouched. A group given alongside a legacy key is
// replaced; when it differs from the notifications group a warning is logged.
func LegacyRewrite(logger logrus.FieldLogger) conf.OverrideMiddleware {
	return func(next conf.OverrideFunc) conf.OverrideFunc {
		return func(name string, value any, group string) error {
			current, ok := legacyKeys[name]
			if !ok {
				return next(name, value, group)
			}
			if group != "" && !strings.EqualFold(group, conf.DefaultGroup) && group != messaging.GroupNotifications && logger != nil {
				logger.WithFields(logrus.Fields{
					"action":        "legacy_rewrite",
					"option":        name,
					"dropped_group": group,
				}).Warn("legacy notification key rewritten, explicit group ignored")
			}
			return next(current, value, messaging.GroupNotifications)
		}
	}
}
